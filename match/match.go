package match

import (
	"strings"

	"github.com/tokrex/tokrex/pattern"
	"github.com/tokrex/tokrex/token"
)

// Capture is one positional or named sub-span of a successful match.
// A capture that did not participate (inside an unmatched optional group)
// is absent, which is distinct from an empty span.
type Capture struct {
	Start, End int // token indexes, half-open
}

// Absent reports whether the capture never participated in the match.
func (c Capture) Absent() bool { return c.Start < 0 || c.End < 0 }

// Len is the number of tokens captured; zero for absent captures too.
func (c Capture) Len() int {
	if c.Absent() {
		return 0
	}
	return c.End - c.Start
}

// Match is a successful pattern application: its span and its captures,
// all indexes into the token sequence that was matched.
type Match struct {
	Start, End int

	toks  []token.Token
	caps  []int
	names map[string]int
}

// GroupCount is the number of positional captures the pattern declares.
func (m *Match) GroupCount() int { return len(m.caps)/2 - 1 }

// FullMatch is the whole matched span as a capture.
func (m *Match) FullMatch() Capture { return Capture{Start: m.Start, End: m.End} }

// CaptureAt returns positional capture i (1-based). Out-of-range indexes
// and non-participating groups yield an absent capture, never a panic.
func (m *Match) CaptureAt(i int) Capture {
	if i < 1 || i > m.GroupCount() {
		return Capture{Start: -1, End: -1}
	}
	return Capture{Start: m.caps[2*i], End: m.caps[2*i+1]}
}

// NamedCapture returns the capture bound to name, absent when the name is
// unknown or its group did not participate.
func (m *Match) NamedCapture(name string) Capture {
	i, ok := m.names[name]
	if !ok {
		return Capture{Start: -1, End: -1}
	}
	return m.CaptureAt(i)
}

// TokensOf resolves a capture to its tokens; nil when absent.
func (m *Match) TokensOf(c Capture) []token.Token {
	if c.Absent() {
		return nil
	}
	return m.toks[c.Start:c.End]
}

// ValueOf is the concatenation of the captured tokens' source text.
func (m *Match) ValueOf(c Capture) string {
	if c.Absent() {
		return ""
	}
	var sb strings.Builder
	for _, t := range m.toks[c.Start:c.End] {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// Value is shorthand for ValueOf(CaptureAt(i)).
func (m *Match) Value(i int) string { return m.ValueOf(m.CaptureAt(i)) }

// NamedValue is shorthand for ValueOf(NamedCapture(name)).
func (m *Match) NamedValue(name string) string { return m.ValueOf(m.NamedCapture(name)) }

// TryMatch runs the program anchored at start. The second result is false
// when the pattern does not match there; that is a normal outcome, never
// an error. Repeated invocation on the same inputs yields the same result.
func (p *Program) TryMatch(toks []token.Token, start int) (*Match, bool) {
	if start < 0 || start > len(toks) {
		return nil, false
	}
	m := newMachine(p, toks, start, nil)
	if !m.run() {
		return nil, false
	}
	return &Match{
		Start: m.caps[0],
		End:   m.caps[1],
		toks:  toks,
		caps:  m.caps,
		names: p.names,
	}, true
}

// TryMatch compiles and runs pat anchored at start. Callers matching the
// same pattern repeatedly should compile once via Compile.
func TryMatch(pat *pattern.Pattern, toks []token.Token, start int) (*Match, bool) {
	return Compile(pat).TryMatch(toks, start)
}
