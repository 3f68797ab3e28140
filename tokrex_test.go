package tokrex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll(t *testing.T) {
	toks, err := Tokenize("let a = 1; let b = 2; const c = 3;", false, false)
	require.NoError(t, err)

	pat, err := Compile(`\k"let" (?<name>\i)`)
	require.NoError(t, err)

	matches := FindAll(pat, toks)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].NamedValue("name"))
	assert.Equal(t, "b", matches[1].NamedValue("name"))
}

func TestFindAllNonOverlapping(t *testing.T) {
	toks, err := Tokenize("a b c d", false, false)
	require.NoError(t, err)

	pat, err := Compile(`\i \i`)
	require.NoError(t, err)

	matches := FindAll(pat, toks)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 2, matches[1].Start)
}

func TestTryMatchFacade(t *testing.T) {
	toks, err := Tokenize("foo()", false, false)
	require.NoError(t, err)

	pat, err := Compile(`\i "(" ")"`)
	require.NoError(t, err)

	m, ok := TryMatch(pat, toks, 0)
	require.True(t, ok)
	assert.Equal(t, 3, m.End)

	_, ok = TryMatch(pat, toks, 1)
	assert.False(t, ok)
}

func TestNewEngine(t *testing.T) {
	e := NewEngine()
	require.NotNil(t, e)
	assert.NoError(t, e.Register("r", `\i`, nil))
}
