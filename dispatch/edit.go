package dispatch

import (
	"fmt"
	"strings"

	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/token"
)

type editKind uint8

const (
	editInsertBefore editKind = iota
	editInsertAfter
	editReplace
	editRemove
)

type edit struct {
	kind       editKind
	start, end int // token index range; inserts use start only
	toks       []token.Token
}

// EditList collects token edits keyed by original token positions. The
// list is append-only during traversal; edits are invisible to in-flight
// matching and are replayed once, in position order, by Reconstruct.
type EditList struct {
	toks  []token.Token
	edits []edit
}

// NewEditList returns an empty edit list over the given sequence.
func NewEditList(toks []token.Token) *EditList {
	return &EditList{toks: toks}
}

// InsertBefore splices newToks into the output just before token i.
func (e *EditList) InsertBefore(i int, newToks ...token.Token) {
	e.edits = append(e.edits, edit{kind: editInsertBefore, start: i, toks: newToks})
}

// InsertAfter splices newToks into the output just after token i.
func (e *EditList) InsertAfter(i int, newToks ...token.Token) {
	e.edits = append(e.edits, edit{kind: editInsertAfter, start: i, toks: newToks})
}

// Replace substitutes token i with newToks.
func (e *EditList) Replace(i int, newToks ...token.Token) {
	e.ReplaceRange(i, i+1, newToks...)
}

// ReplaceRange substitutes tokens [start, end) with newToks.
func (e *EditList) ReplaceRange(start, end int, newToks ...token.Token) {
	e.edits = append(e.edits, edit{kind: editReplace, start: start, end: end, toks: newToks})
}

// ReplaceMatch substitutes a whole matched span with newToks.
func (e *EditList) ReplaceMatch(m *match.Match, newToks ...token.Token) {
	e.ReplaceRange(m.Start, m.End, newToks...)
}

// Remove drops token i from the output.
func (e *EditList) Remove(i int) {
	e.edits = append(e.edits, edit{kind: editRemove, start: i, end: i + 1})
}

// RemoveRange drops tokens [start, end) from the output.
func (e *EditList) RemoveRange(start, end int) {
	e.edits = append(e.edits, edit{kind: editRemove, start: start, end: end})
}

// RemoveMatch drops a whole matched span from the output.
func (e *EditList) RemoveMatch(m *match.Match) {
	e.RemoveRange(m.Start, m.End)
}

// Empty reports whether no edits were recorded.
func (e *EditList) Empty() bool { return len(e.edits) == 0 }

// Reconstruct replays the edits against the original source. Gaps between
// tokens (elided whitespace and comments included) are copied verbatim, so
// an empty edit list reproduces the input byte for byte.
func (e *EditList) Reconstruct(source string) (string, error) {
	before := map[int][]token.Token{}
	after := map[int][]token.Token{}
	covered := map[int]bool{}
	replaceAt := map[int][]token.Token{}

	for _, ed := range e.edits {
		if ed.start < 0 || ed.start > len(e.toks) {
			return "", fmt.Errorf("edit index %d out of range", ed.start)
		}
		switch ed.kind {
		case editInsertBefore:
			before[ed.start] = append(before[ed.start], ed.toks...)
		case editInsertAfter:
			after[ed.start] = append(after[ed.start], ed.toks...)
		case editReplace, editRemove:
			if ed.end > len(e.toks) || ed.end < ed.start {
				return "", fmt.Errorf("edit range %d..%d out of range", ed.start, ed.end)
			}
			for i := ed.start; i < ed.end; i++ {
				covered[i] = true
			}
			if ed.kind == editReplace {
				replaceAt[ed.start] = append(replaceAt[ed.start], ed.toks...)
			}
		}
	}

	var sb strings.Builder
	last := 0
	for i, t := range e.toks {
		// gaps interior to a replaced or removed range go with the range
		interior := covered[i] && i > 0 && covered[i-1]
		if t.Pos.Offset > last && !interior {
			sb.WriteString(source[last:t.Pos.Offset])
		}
		writeValues(&sb, before[i])
		writeValues(&sb, replaceAt[i])
		if !covered[i] {
			sb.WriteString(source[t.Pos.Offset:t.End])
		}
		writeValues(&sb, after[i])
		last = t.End
	}
	if last < len(source) {
		sb.WriteString(source[last:])
	}
	return sb.String(), nil
}

func writeValues(sb *strings.Builder, toks []token.Token) {
	for _, t := range toks {
		sb.WriteString(t.Value)
	}
}
