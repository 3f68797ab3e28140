package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokrex/tokrex/token"
)

func TestCompileAtoms(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    Node
	}{
		{
			name:    "class shorthand",
			pattern: `\i`,
			want:    &ClassNode{Kind: token.Ident},
		},
		{
			name:    "negated class",
			pattern: `\W`,
			want:    &ClassNode{Kind: token.Whitespace, Negate: true},
		},
		{
			name:    "class-scoped literal",
			pattern: `\k"const"`,
			want:    &LiteralNode{Kind: token.Keyword, Value: "const"},
		},
		{
			name:    "bare literal matches any kind",
			pattern: `"("`,
			want:    &LiteralNode{Kind: token.Invalid, Value: "("},
		},
		{
			name:    "wildcard",
			pattern: `.`,
			want:    &AnyNode{},
		},
		{
			name:    "named kind class",
			pattern: `\<tag-open>`,
			want:    &ClassNode{Kind: token.TagOpen},
		},
		{
			name:    "negated named kind class",
			pattern: `\<!tag-open>`,
			want:    &ClassNode{Kind: token.TagOpen, Negate: true},
		},
		{
			name:    "balanced parens",
			pattern: `\Bp`,
			want:    &BalancedNode{Open: "(", Close: ")"},
		},
		{
			name:    "balanced braces",
			pattern: `\Bb`,
			want:    &BalancedNode{Open: "{", Close: "}"},
		},
		{
			name:    "literal with escaped quote",
			pattern: `"\""`,
			want:    &LiteralNode{Kind: token.Invalid, Value: `"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Root)
		})
	}
}

func TestCompileQuantifiers(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		min, max int
		lazy     bool
	}{
		{"star", `\i*`, 0, -1, false},
		{"plus", `\i+`, 1, -1, false},
		{"optional", `\i?`, 0, 1, false},
		{"lazy star", `\i*?`, 0, -1, true},
		{"lazy plus", `\i+?`, 1, -1, true},
		{"exact count", `\i{3}`, 3, 3, false},
		{"open range", `\i{2,}`, 2, -1, false},
		{"bounded range lazy", `\i{2,5}?`, 2, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			q, ok := p.Root.(*QuantNode)
			require.True(t, ok, "root is %T", p.Root)
			assert.Equal(t, tt.min, q.Min)
			assert.Equal(t, tt.max, q.Max)
			assert.Equal(t, tt.lazy, q.Lazy)
		})
	}
}

func TestCompileGroups(t *testing.T) {
	p, err := Compile(`\k"const" (?<name>\i) "=" (\n)`)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Groups)
	assert.Equal(t, map[string]int{"name": 1}, p.Names)

	p, err = Compile(`(?:\i \o)+`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Groups)

	// grouped alternation does not capture
	p, err = Compile(`[\i|\n|\s]`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Groups)
	g, ok := p.Root.(*GroupNode)
	require.True(t, ok)
	assert.Equal(t, 0, g.Index)
	alt, ok := g.Node.(*AltNode)
	require.True(t, ok)
	assert.Len(t, alt.Branches, 3)
}

func TestCompileLookarounds(t *testing.T) {
	tests := []struct {
		pattern  string
		behind   bool
		negative bool
	}{
		{`(?=\i)`, false, false},
		{`(?!\i)`, false, true},
		{`(?<=\i)`, true, false},
		{`(?<!\i)`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			look, ok := p.Root.(*LookNode)
			require.True(t, ok)
			assert.Equal(t, tt.behind, look.Behind)
			assert.Equal(t, tt.negative, look.Negative)
		})
	}
}

func TestCompileBackrefs(t *testing.T) {
	p, err := Compile(`(?<v>\i) "=" \k<v>`)
	require.NoError(t, err)
	seq, ok := p.Root.(*SeqNode)
	require.True(t, ok)
	ref, ok := seq.Nodes[2].(*BackrefNode)
	require.True(t, ok)
	assert.Equal(t, 1, ref.Index)
	assert.Equal(t, -1, ref.Depth)

	p, err = Compile(`(\i) "(" \1@1`)
	require.NoError(t, err)
	seq = p.Root.(*SeqNode)
	ref = seq.Nodes[2].(*BackrefNode)
	assert.Equal(t, 1, ref.Index)
	assert.Equal(t, 1, ref.Depth)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		offset  int
	}{
		{"unknown shorthand", `\j`, 0},
		{"trailing backslash", `\`, 0},
		{"unterminated literal", `"abc`, 0},
		{"unclosed group", `(\i`, 0},
		{"unclosed bracket", `[\i|\n`, 0},
		{"unknown group prefix", `(?*\i)`, 0},
		{"backref to undeclared group", `(\i) \2`, 5},
		{"named backref to undeclared name", `\k<v>`, 0},
		{"duplicate capture name", `(?<a>\i) (?<a>\n)`, 9},
		{"negated class with literal", `\I"x"`, 0},
		{"unknown balanced pair", `\Bz`, 0},
		{"unknown kind name", `\<bogus>`, 0},
		{"malformed quantifier", `\i{,3}`, 2},
		{"inverted quantifier range", `\i{5,2}`, 2},
		{"stray metacharacter", `\i )`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			require.Error(t, err)
			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Equal(t, tt.offset, synErr.Offset)
		})
	}
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile(`\i+`) })
	assert.Panics(t, func() { MustCompile(`\j`) })
}

func TestStableGroupNumbering(t *testing.T) {
	a, err := Compile(`(\i) (?<x>\n) (\s)`)
	require.NoError(t, err)
	b, err := Compile(`(\i) (?<x>\n) (\s)`)
	require.NoError(t, err)
	assert.Equal(t, a.Groups, b.Groups)
	assert.Equal(t, a.Names, b.Names)
	assert.Equal(t, 2, a.Names["x"])
}
