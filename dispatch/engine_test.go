package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokrex/tokrex/lexer"
	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/token"
)

func lex(t *testing.T, source string) []token.Token {
	t.Helper()
	toks, err := lexer.Tokenize(source, lexer.Options{})
	require.NoError(t, err)
	return toks
}

// record returns a handler that appends name to fired.
func record(fired *[]string, name string) Handler {
	return func(r *Run, m *match.Match) (any, error) {
		if fired != nil {
			*fired = append(*fired, name)
		}
		return nil, nil
	}
}

func TestRegisterValidation(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Register("a", `\i`, record(nil, "a")))

	err := e.Register("a", `\n`, record(nil, "a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")

	err = e.Register("b", `\j`, record(nil, "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registration \"b\"")
}

func TestPriorityAndTies(t *testing.T) {
	var fired []string
	e := NewEngine()
	require.NoError(t, e.Register("low", `\i`, record(&fired, "low")))
	require.NoError(t, e.Register("high", `\i`, record(&fired, "high"), WithPriority(5)))

	_, err := e.Visit(lex(t, "a b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "high"}, fired)

	// equal priority breaks by registration order
	fired = nil
	e = NewEngine()
	require.NoError(t, e.Register("first", `\i`, record(&fired, "first")))
	require.NoError(t, e.Register("second", `\i`, record(&fired, "second")))
	_, err = e.Visit(lex(t, "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, fired)
}

func TestCursorAdvance(t *testing.T) {
	t.Run("consuming skips the matched span", func(t *testing.T) {
		var fired []string
		e := NewEngine()
		require.NoError(t, e.Register("pair", `\i \i`, record(&fired, "pair")))
		_, err := e.Visit(lex(t, "a b c"))
		require.NoError(t, err)
		assert.Len(t, fired, 1)
	})

	t.Run("non-consuming advances one token", func(t *testing.T) {
		var fired []string
		e := NewEngine()
		require.NoError(t, e.Register("pair", `\i \i`, record(&fired, "pair"), NonConsuming()))
		_, err := e.Visit(lex(t, "a b c"))
		require.NoError(t, err)
		assert.Len(t, fired, 2)
	})

	t.Run("zero-width match is forced forward", func(t *testing.T) {
		var fired []string
		e := NewEngine()
		require.NoError(t, e.Register("peek", `(?=\i)`, record(&fired, "peek")))
		_, err := e.Visit(lex(t, "a b"))
		require.NoError(t, err)
		assert.Len(t, fired, 2)
	})
}

func TestAllowedCallers(t *testing.T) {
	var innerFired int
	var seenCaller string

	e := NewEngine()
	err := e.Register("inner", `\i`, func(r *Run, m *match.Match) (any, error) {
		innerFired++
		seenCaller = r.Caller()
		return nil, nil
	}, AllowedCallers("outer"))
	require.NoError(t, err)

	err = e.Register("outer", `\k"function"`, func(r *Run, m *match.Match) (any, error) {
		return nil, r.Traverse(m.End, len(r.Tokens()), "inner")
	})
	require.NoError(t, err)

	_, err = e.Visit(lex(t, "function foo bar"))
	require.NoError(t, err)

	// never at top level, twice inside the nested traversal
	assert.Equal(t, 2, innerFired)
	assert.Equal(t, "outer", seenCaller)
}

func TestSkipBalanced(t *testing.T) {
	var counted []string
	e := NewEngine()
	err := e.Register("args", `\i"foo"`, func(r *Run, m *match.Match) (any, error) {
		r.SkipBalanced(m.End)
		return nil, nil
	}, WithPriority(1))
	require.NoError(t, err)
	err = e.Register("idents", `\i`, func(r *Run, m *match.Match) (any, error) {
		counted = append(counted, r.Tokens()[m.Start].Value)
		return nil, nil
	})
	require.NoError(t, err)

	_, err = e.Visit(lex(t, "foo ( a b ) baz"))
	require.NoError(t, err)
	assert.Equal(t, []string{"baz"}, counted)
}

func TestSkipTo(t *testing.T) {
	var counted []string
	e := NewEngine()
	err := e.Register("stmt", `\k"let"`, func(r *Run, m *match.Match) (any, error) {
		r.SkipTo(m.End, ";")
		return nil, nil
	}, WithPriority(1))
	require.NoError(t, err)
	err = e.Register("idents", `\i`, func(r *Run, m *match.Match) (any, error) {
		counted = append(counted, r.Tokens()[m.Start].Value)
		return nil, nil
	})
	require.NoError(t, err)

	_, err = e.Visit(lex(t, "let a = b; c"))
	require.NoError(t, err)
	// a and b are skipped; the ';' position itself does not match \i
	assert.Equal(t, []string{"c"}, counted)
}

func TestContextSharing(t *testing.T) {
	e := NewEngine()
	err := e.Register("writer", `\k"const"`, func(r *Run, m *match.Match) (any, error) {
		r.Context().Set("mode", "strict")
		return "wrote", nil
	})
	require.NoError(t, err)
	err = e.Register("reader", `\i`, func(r *Run, m *match.Match) (any, error) {
		return r.Context().GetString("mode"), nil
	})
	require.NoError(t, err)

	run, err := e.Visit(lex(t, "const x"))
	require.NoError(t, err)

	ctx := run.Context()
	last, ok := ctx.LastReturn("writer")
	require.True(t, ok)
	assert.Equal(t, "wrote", last)

	last, ok = ctx.LastReturn("reader")
	require.True(t, ok)
	assert.Equal(t, "strict", last)

	_, ok = ctx.LastReturn("nobody")
	assert.False(t, ok)

	assert.Equal(t, []any{"wrote"}, ctx.Returns("writer"))

	ctx.Delete("mode")
	_, ok = ctx.Get("mode")
	assert.False(t, ok)
}

func TestHandlerErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	var after int

	e := NewEngine()
	err := e.Register("bad", `\i`, func(r *Run, m *match.Match) (any, error) {
		return nil, boom
	}, WithPriority(1))
	require.NoError(t, err)
	err = e.Register("never", `\i`, func(r *Run, m *match.Match) (any, error) {
		after++
		return nil, nil
	})
	require.NoError(t, err)

	_, err = e.Visit(lex(t, "a b c"))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `handler "bad"`)
	assert.Zero(t, after)
}

func TestLifecycleHooks(t *testing.T) {
	var began, ended bool
	var unmatched []int

	e := NewEngine()
	e.OnBegin = func(r *Run) { began = true }
	e.OnEnd = func(r *Run) { ended = true }
	e.OnUnmatched = func(r *Run, i int) { unmatched = append(unmatched, i) }
	require.NoError(t, e.Register("n", `\n`, record(nil, "n")))

	// tokens: a 1 b eof; only the number matches
	_, err := e.Visit(lex(t, "a 1 b"))
	require.NoError(t, err)

	assert.True(t, began)
	assert.True(t, ended)
	assert.Equal(t, []int{0, 2, 3}, unmatched)
}

func TestTraverseScope(t *testing.T) {
	var fired []string
	e := NewEngine()
	require.NoError(t, e.Register("a", `\i`, record(&fired, "a")))
	require.NoError(t, e.Register("b", `\n`, record(&fired, "b")))

	err := e.Traverse(lex(t, "x 1"), []string{"b"}, NewContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fired)
}
