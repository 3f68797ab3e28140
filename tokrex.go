// Package tokrex is a token-level pattern matching and source
// transformation toolkit for TSX-like source text.
//
// The pipeline: the lexer turns text into typed tokens, the pattern
// compiler turns a regex-like micro-grammar into an executable pattern,
// the matcher runs compiled patterns against the token stream with full
// backtracking, and the dispatch engine walks the stream invoking
// registered handlers on match. This package re-exports the operations
// most callers need; the subpackages carry the full surface.
package tokrex

import (
	"github.com/tokrex/tokrex/dispatch"
	"github.com/tokrex/tokrex/lexer"
	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/pattern"
	"github.com/tokrex/tokrex/token"
)

// Tokenize scans source into a token sequence. Whitespace and comment
// tokens are elided unless requested.
func Tokenize(source string, includeWhitespace, includeComments bool) ([]token.Token, error) {
	return lexer.Tokenize(source, lexer.Options{
		IncludeWhitespace: includeWhitespace,
		IncludeComments:   includeComments,
	})
}

// Compile parses pattern text into an immutable, reusable pattern.
func Compile(patternText string) (*pattern.Pattern, error) {
	return pattern.Compile(patternText)
}

// TryMatch applies a compiled pattern anchored at start. A false result
// is a normal outcome, not an error.
func TryMatch(p *pattern.Pattern, toks []token.Token, start int) (*match.Match, bool) {
	return match.TryMatch(p, toks, start)
}

// FindAll scans left to right collecting non-overlapping matches.
func FindAll(p *pattern.Pattern, toks []token.Token) []*match.Match {
	prog := match.Compile(p)
	var out []*match.Match
	for i := 0; i <= len(toks); {
		m, ok := prog.TryMatch(toks, i)
		if ok && m.End > m.Start {
			out = append(out, m)
			i = m.End
			continue
		}
		i++
	}
	return out
}

// NewEngine returns an empty dispatch engine ready for registrations.
func NewEngine() *dispatch.Engine {
	return dispatch.NewEngine()
}
