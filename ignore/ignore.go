// Package ignore decides whether filesystem paths should be excluded from
// processing, based on gitignore-style rules declared in a single
// .codexignore file at a project root.
//
// A Matcher is compiled once and then queried repeatedly during a directory
// walk. It is immutable after construction and safe for concurrent use
// without synchronization.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// IgnoreFile is the name of the pattern file looked up under the root.
const IgnoreFile = ".codexignore"

// Matcher holds the compiled rule list and the root path against which
// queries are resolved. Every decision is a pure function of the rules, the
// root, the query path and the directory flag; queries never fail.
type Matcher struct {
	root  string
	rules []rule
}

// Load reads the ignore file under root and compiles it. A missing file is
// not an error: the matcher is nil and the caller proceeds unfiltered.
// Unreadable files and malformed patterns are construction failures.
func Load(root string) (*Matcher, error) {
	return LoadFS(afero.NewOsFs(), root)
}

// LoadFS is Load on an explicit filesystem, so callers and tests can supply
// an in-memory or read-only view.
func LoadFS(fsys afero.Fs, root string) (*Matcher, error) {
	name := filepath.Join(root, IgnoreFile)

	ok, err := afero.Exists(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if !ok {
		return nil, nil
	}

	content, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return Compile(root, content)
}

// Compile builds a Matcher from raw ignore-file content. It is a pure
// transformation: no filesystem access, no side effects.
func Compile(root string, content []byte) (*Matcher, error) {
	rules, err := parseRules(content)
	if err != nil {
		return nil, err
	}
	return &Matcher{root: filepath.Clean(root), rules: rules}, nil
}

// Root returns the root used to resolve relative query paths.
func (m *Matcher) Root() string {
	return m.root
}

// IsFileIgnored reports whether a non-directory path should be excluded.
func (m *Matcher) IsFileIgnored(path string) bool {
	return m.isIgnored(path, false)
}

// IsDirIgnored reports whether a directory path should be excluded.
// Everything nested under an ignored directory is excluded as well.
func (m *Matcher) IsDirIgnored(path string) bool {
	return m.isIgnored(path, true)
}

// RelativePath returns path expressed relative to the root, or ok=false when
// the path does not lie under the root. The root itself yields ".".
func (m *Matcher) RelativePath(path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(m.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// isIgnored evaluates the path, then each ancestor directory from the
// deepest up, so that a path nested inside an ignored directory is itself
// ignored even when no rule matches it individually. The first level with a
// decisive verdict wins.
func (m *Matcher) isIgnored(path string, isDir bool) bool {
	rel, ok := m.RelativePath(path)
	if !ok {
		return false // no rule can match a path outside its own tree
	}

	segs := splitPath(rel)
	if v := evaluate(m.rules, segs, isDir); v != verdictNone {
		return v == verdictIgnore
	}
	for i := len(segs) - 1; i >= 1; i-- {
		if v := evaluate(m.rules, segs[:i], true); v != verdictNone {
			return v == verdictIgnore
		}
	}
	return false
}

// splitPath splits a root-relative path into slash segments. The root
// itself ("."), kept as a single marker segment, lets root-level rules
// still be evaluated without special cases downstream.
func splitPath(rel string) []string {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
