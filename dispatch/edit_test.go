package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/token"
)

func TestReconstructRoundTrip(t *testing.T) {
	sources := []string{
		"let x = 1;",
		"let x = 1; // trailing comment\nconst y = 2;\n",
		"  /* leading */ a + b  ",
		"",
	}
	for _, source := range sources {
		toks := lex(t, source)
		out, err := NewEditList(toks).Reconstruct(source)
		require.NoError(t, err)
		assert.Equal(t, source, out, "empty edit list must reproduce the input")
	}
}

func TestReconstructEdits(t *testing.T) {
	source := "var x = 1;"
	toks := lex(t, source) // var x = 1 ; eof

	t.Run("replace range drops interior trivia", func(t *testing.T) {
		e := NewEditList(toks)
		e.ReplaceRange(0, 2, token.Synthetic(token.Text, "let x"))
		out, err := e.Reconstruct(source)
		require.NoError(t, err)
		assert.Equal(t, "let x = 1;", out)
	})

	t.Run("replace single token", func(t *testing.T) {
		e := NewEditList(toks)
		e.Replace(0, token.Synthetic(token.Keyword, "const"))
		out, err := e.Reconstruct(source)
		require.NoError(t, err)
		assert.Equal(t, "const x = 1;", out)
	})

	t.Run("insert before and after", func(t *testing.T) {
		e := NewEditList(toks)
		e.InsertBefore(0, token.Synthetic(token.Comment, "/* note */ "))
		e.InsertAfter(4, token.Synthetic(token.Text, " // done"))
		out, err := e.Reconstruct(source)
		require.NoError(t, err)
		assert.Equal(t, "/* note */ var x = 1; // done", out)
	})

	t.Run("remove range", func(t *testing.T) {
		e := NewEditList(toks)
		e.RemoveRange(2, 4) // "= 1"; the gap before the range stays
		out, err := e.Reconstruct(source)
		require.NoError(t, err)
		assert.Equal(t, "var x ;", out)
	})

	t.Run("edits do not accumulate across lists", func(t *testing.T) {
		e := NewEditList(toks)
		assert.True(t, e.Empty())
		e.Remove(0)
		assert.False(t, e.Empty())
	})
}

func TestReconstructThroughVisit(t *testing.T) {
	source := "var a = 1;\nvar b = 2;\n"
	toks := lex(t, source)

	e := NewEngine()
	err := e.Register("var-to-let", `\k"var"`, func(r *Run, m *match.Match) (any, error) {
		r.Edits().ReplaceMatch(m, token.Synthetic(token.Keyword, "let"))
		return nil, nil
	})
	require.NoError(t, err)

	run, err := e.Visit(toks)
	require.NoError(t, err)

	out, err := run.Edits().Reconstruct(source)
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\nlet b = 2;\n", out)
}

func TestReconstructIndexValidation(t *testing.T) {
	source := "a"
	toks := lex(t, source)

	e := NewEditList(toks)
	e.InsertBefore(99, token.Synthetic(token.Text, "x"))
	_, err := e.Reconstruct(source)
	require.Error(t, err)

	e = NewEditList(toks)
	e.ReplaceRange(1, 0, token.Synthetic(token.Text, "x"))
	_, err = e.Reconstruct(source)
	require.Error(t, err)
}
