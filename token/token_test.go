package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindByName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"identifier", Ident, true},
		{"tag-open", TagOpen, true},
		{"expression-start", ExprStart, true},
		{"as-const", AsConst, true},
		{"eof", EOF, true},
		{"bogus", Invalid, false},
		{"", Invalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestKindNamesRoundTrip(t *testing.T) {
	for k, name := range kindNames {
		got, ok := KindByName(name)
		assert.True(t, ok, "name %q", name)
		assert.Equal(t, k, got)
		assert.Equal(t, name, k.String())
	}
}

func TestSynthetic(t *testing.T) {
	s := Synthetic(Text, "let")
	assert.True(t, s.IsSynthetic())
	assert.Equal(t, "let", s.Value)

	lexed := Token{Kind: Ident, Value: "x", Pos: Pos{Offset: 0, Line: 1, Column: 1}, End: 1}
	assert.False(t, lexed.IsSynthetic())
}

func TestSignificant(t *testing.T) {
	assert.False(t, Token{Kind: Whitespace}.Significant())
	assert.False(t, Token{Kind: Comment}.Significant())
	assert.True(t, Token{Kind: Ident}.Significant())
	assert.True(t, Token{Kind: EOF}.Significant())
}
