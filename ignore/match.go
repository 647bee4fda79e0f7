package ignore

import "path"

// verdict is the outcome of evaluating one path against the rule list.
type verdict int

const (
	verdictNone   verdict = iota // no rule matched
	verdictIgnore                // last matching rule ignores
	verdictKeep                  // last matching rule is a negation
)

// evaluate walks the rules in declaration order and returns the verdict of
// the last rule that matches. Later rules override earlier ones, which is
// what lets a negation rescue a path ignored by a broader earlier pattern.
func evaluate(rules []rule, segs []string, isDir bool) verdict {
	v := verdictNone
	for i := range rules {
		r := &rules[i]
		if !r.match(segs, isDir) {
			continue
		}
		if r.negate {
			v = verdictKeep
		} else {
			v = verdictIgnore
		}
	}
	return v
}

// match reports whether the rule applies to the given path segments.
// Directory-only rules never match files directly; files under a matching
// directory are handled by the caller's ancestor walk.
func (r *rule) match(segs []string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if r.anchored {
		return matchSegments(r.segments, segs)
	}
	// Slash-free patterns float: they match the name at any depth, so only
	// the final segment matters here. Intermediate directories are covered
	// by the ancestor walk.
	return matchSegment(r.segments[0], segs[len(segs)-1])
}

// matchSegments matches pattern segments against path segments from the
// first segment on. A "**" segment consumes zero or more path segments.
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if !matchSegment(pattern[0], segs[0]) {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}

// matchSegment matches one glob segment against one path segment.
// Globs are validated at compile time, so a match error cannot occur here.
func matchSegment(pattern, seg string) bool {
	ok, _ := path.Match(pattern, seg)
	return ok
}
