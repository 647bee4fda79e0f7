package ignore

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

// PatternError reports a malformed pattern line in an ignore file.
type PatternError struct {
	Line    int    // 1-indexed line number
	Pattern string // the offending line as written
	Err     error  // underlying cause (path.ErrBadPattern for glob errors)
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("ignore: invalid pattern %q on line %d: %v", e.Pattern, e.Line, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// rule is one compiled pattern line. Rules are immutable after compilation
// and are evaluated in declaration order; the last matching rule wins.
type rule struct {
	pattern  string   // original line (for diagnostics)
	segments []string // glob split on "/"; a "**" segment spans directories
	line     int      // 1-indexed source line
	negate   bool     // leading !
	dirOnly  bool     // trailing /
	anchored bool     // contains a / before the last character: bound to root
}

// parseRules compiles raw ignore-file content into an ordered rule list.
// Order is preserved exactly as encountered so later rules can override
// earlier ones.
func parseRules(content []byte) ([]rule, error) {
	content = normalizeContent(content)

	var rules []rule
	for i, line := range strings.Split(string(content), "\n") {
		r, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if r != nil {
			rules = append(rules, *r)
		}
	}
	return rules, nil
}

// parseLine compiles a single pattern line. Returns nil for blank lines,
// comments, and lines that are empty after processing.
func parseLine(line string, lineNum int) (*rule, error) {
	line = trimTrailingWhitespace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	original := line

	// \! escapes the bang; check before ! so escaped bangs stay literal.
	negate := false
	if strings.HasPrefix(line, `\!`) {
		line = line[1:]
	} else if strings.HasPrefix(line, "!") {
		negate = true
		line = line[1:]
	}

	// \# after negation so !\#foo works.
	if strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}

	dirOnly := false
	if strings.HasSuffix(line, "/") {
		dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// A leading slash anchors to the root exactly; any other slash before
	// the last character binds the pattern to a depth too.
	anchored := false
	if strings.HasPrefix(line, "/") {
		anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		anchored = true
	}

	if line == "" {
		return nil, nil
	}

	segments, err := splitSegments(line)
	if err != nil {
		return nil, &PatternError{Line: lineNum, Pattern: original, Err: err}
	}

	return &rule{
		pattern:  original,
		segments: segments,
		line:     lineNum,
		negate:   negate,
		dirOnly:  dirOnly,
		anchored: anchored,
	}, nil
}

// splitSegments splits a pattern on "/" and validates each glob segment.
// Malformed character classes (unterminated "[") are rejected here so that
// query-time matching never fails.
func splitSegments(pattern string) ([]string, error) {
	parts := strings.Split(pattern, "/")
	segments := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue // collapse duplicate slashes
		}
		if part != "**" && strings.ContainsAny(part, `*?[\`) {
			if _, err := path.Match(part, ""); err != nil {
				return nil, err
			}
		}
		segments = append(segments, part)
	}
	return segments, nil
}

// normalizeContent prepares raw ignore-file bytes for line splitting:
// strips a UTF-8 BOM and folds CRLF / lone CR line endings to LF.
func normalizeContent(content []byte) []byte {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
	return content
}

// trimTrailingWhitespace strips trailing spaces and tabs unless the final
// space is escaped with a backslash ("foo\ " keeps the space).
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if end == len(line) {
		return line
	}

	// Count backslashes immediately before the cut; an odd run escapes
	// the first trimmed space.
	bs := 0
	for i := end - 1; i >= 0 && line[i] == '\\'; i-- {
		bs++
	}
	if bs%2 == 1 && line[end] == ' ' {
		return line[:end-1] + " "
	}
	return line[:end]
}
