package ignore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules_SkipsBlanksAndComments(t *testing.T) {
	rules, err := parseRules([]byte("\n# comment\n   \n*.log\n\n# another\n"))
	require.NoError(t, err)

	require.Len(t, rules, 1)
	assert.Equal(t, "*.log", rules[0].pattern)
	assert.Equal(t, 4, rules[0].line)
}

func TestParseRules_Flags(t *testing.T) {
	tests := []struct {
		line     string
		negate   bool
		dirOnly  bool
		anchored bool
		segments []string
	}{
		{"*.log", false, false, false, []string{"*.log"}},
		{"!important.log", true, false, false, []string{"important.log"}},
		{"build/", false, true, false, []string{"build"}},
		{"/vendor", false, false, true, []string{"vendor"}},
		{"doc/frotz", false, false, true, []string{"doc", "frotz"}},
		{"doc/frotz/", false, true, true, []string{"doc", "frotz"}},
		{"!/dist/", true, true, true, []string{"dist"}},
		{"**/node_modules", false, false, true, []string{"**", "node_modules"}},
		{"a/**/b", false, false, true, []string{"a", "**", "b"}},
		{"a//b", false, false, true, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rules, err := parseRules([]byte(tt.line))
			require.NoError(t, err)
			require.Len(t, rules, 1)

			r := rules[0]
			assert.Equal(t, tt.negate, r.negate, "negate")
			assert.Equal(t, tt.dirOnly, r.dirOnly, "dirOnly")
			assert.Equal(t, tt.anchored, r.anchored, "anchored")
			assert.Equal(t, tt.segments, r.segments)
		})
	}
}

func TestParseRules_Escapes(t *testing.T) {
	rules, err := parseRules([]byte("\\!literal-bang\n\\#not-a-comment\n!\\#negated-hash\n"))
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.False(t, rules[0].negate)
	assert.Equal(t, []string{"!literal-bang"}, rules[0].segments)

	assert.Equal(t, []string{"#not-a-comment"}, rules[1].segments)

	assert.True(t, rules[2].negate)
	assert.Equal(t, []string{"#negated-hash"}, rules[2].segments)
}

func TestParseRules_TrailingWhitespace(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"plain trim", "foo   ", "foo"},
		{"tab trim", "foo\t", "foo"},
		{"escaped space kept", "foo\\ ", "foo "},
		{"escaped backslash then space", "foo\\\\ ", "foo\\\\"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := parseRules([]byte(tt.line))
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, tt.want, rules[0].segments[0])
		})
	}
}

func TestParseRules_InvalidCharClass(t *testing.T) {
	_, err := parseRules([]byte("ok.txt\nbad[class\n"))
	require.Error(t, err)

	var perr *PatternError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "bad[class", perr.Pattern)
}

func TestParseRules_ValidCharClass(t *testing.T) {
	rules, err := parseRules([]byte("file[0-9].txt\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestParseRules_NormalizesContent(t *testing.T) {
	// UTF-8 BOM, CRLF and lone CR all parse to the same two rules.
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a.txt\r\nb.txt\r")...)
	rules, err := parseRules(bom)
	require.NoError(t, err)

	require.Len(t, rules, 2)
	assert.Equal(t, []string{"a.txt"}, rules[0].segments)
	assert.Equal(t, []string{"b.txt"}, rules[1].segments)
}

func TestParseRules_BareSlashDropped(t *testing.T) {
	rules, err := parseRules([]byte("/\n!/\n"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}
