// Package pattern compiles the token-pattern micro-grammar into an
// immutable tree ready for repeated matching.
//
// A pattern is an alternation of sequences of quantified atoms:
//
//	\i                an identifier token (uppercase letter negates: \I)
//	\k"const"         a keyword whose text is exactly "const"
//	"("               any token whose text is "("
//	.                 any token
//	(...)             capturing group     (?:...) non-capturing
//	(?<name>...)      named capturing group
//	(?=...) (?!...)   lookahead           (?<=...) (?<!...) lookbehind
//	\1  \k<name>      backreference, optionally \1@0 to pin nesting depth
//	\Bp \Bb \Bs \Ba   balanced ()  {}  []  <>
//	[a|b|c]           grouped alternation
//	* + ? {n} {n,} {n,m}   quantifiers; trailing ? makes them non-greedy
//	\<tag-open>       any kind by its canonical name, \<!tag-open> negated
package pattern

import (
	"fmt"
	"strings"

	"github.com/tokrex/tokrex/token"
)

// Node is one vertex of a compiled pattern tree. Trees are immutable after
// Compile returns.
type Node interface {
	String() string
}

// ClassNode matches any token of one kind, or anything but that kind when
// negated.
type ClassNode struct {
	Kind   token.Kind
	Negate bool
}

func (n *ClassNode) String() string {
	if n.Negate {
		return fmt.Sprintf("!%s", n.Kind)
	}
	return n.Kind.String()
}

// LiteralNode matches a token by its exact text. Kind narrows the match to
// one token kind; token.Invalid means any kind.
type LiteralNode struct {
	Kind  token.Kind
	Value string
}

func (n *LiteralNode) String() string {
	if n.Kind == token.Invalid {
		return fmt.Sprintf("%q", n.Value)
	}
	return fmt.Sprintf("%s%q", n.Kind, n.Value)
}

// AnyNode matches any single token except end-of-input.
type AnyNode struct{}

func (n *AnyNode) String() string { return "." }

// SeqNode matches its children in order.
type SeqNode struct {
	Nodes []Node
}

func (n *SeqNode) String() string {
	parts := make([]string, len(n.Nodes))
	for i, c := range n.Nodes {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// AltNode tries its branches in written order.
type AltNode struct {
	Branches []Node
}

func (n *AltNode) String() string {
	parts := make([]string, len(n.Branches))
	for i, c := range n.Branches {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, "|") + "]"
}

// GroupNode wraps a subpattern. Index is the 1-based capture number, or 0
// for a non-capturing group. Name is set for named captures.
type GroupNode struct {
	Index int
	Name  string
	Node  Node
}

func (n *GroupNode) String() string {
	switch {
	case n.Name != "":
		return fmt.Sprintf("(?<%s>%s)", n.Name, n.Node)
	case n.Index > 0:
		return fmt.Sprintf("(%s)", n.Node)
	default:
		return fmt.Sprintf("(?:%s)", n.Node)
	}
}

// QuantNode repeats its child between Min and Max times; Max < 0 means
// unbounded. Lazy quantifiers prefer the fewest repetitions.
type QuantNode struct {
	Node Node
	Min  int
	Max  int
	Lazy bool
}

func (n *QuantNode) String() string {
	suffix := ""
	switch {
	case n.Min == 0 && n.Max < 0:
		suffix = "*"
	case n.Min == 1 && n.Max < 0:
		suffix = "+"
	case n.Min == 0 && n.Max == 1:
		suffix = "?"
	case n.Max < 0:
		suffix = fmt.Sprintf("{%d,}", n.Min)
	case n.Min == n.Max:
		suffix = fmt.Sprintf("{%d}", n.Min)
	default:
		suffix = fmt.Sprintf("{%d,%d}", n.Min, n.Max)
	}
	if n.Lazy {
		suffix += "?"
	}
	return n.Node.String() + suffix
}

// LookNode asserts its subpattern without consuming tokens or committing
// the subpattern's captures.
type LookNode struct {
	Node     Node
	Behind   bool
	Negative bool
}

func (n *LookNode) String() string {
	op := "?="
	switch {
	case n.Behind && n.Negative:
		op = "?<!"
	case n.Behind:
		op = "?<="
	case n.Negative:
		op = "?!"
	}
	return fmt.Sprintf("(%s%s)", op, n.Node)
}

// BackrefNode requires the upcoming tokens to equal a previous capture,
// value for value. Depth >= 0 additionally pins the bracket nesting depth,
// counted from the capture's start, at the point of reference.
type BackrefNode struct {
	Index int
	Name  string
	Depth int // -1 when unconstrained
}

func (n *BackrefNode) String() string {
	s := fmt.Sprintf(`\%d`, n.Index)
	if n.Name != "" {
		s = fmt.Sprintf(`\k<%s>`, n.Name)
	}
	if n.Depth >= 0 {
		s += fmt.Sprintf("@%d", n.Depth)
	}
	return s
}

// BalancedNode matches from an open-bracket token to the close that
// returns its nesting to zero, both brackets included.
type BalancedNode struct {
	Open  string
	Close string
}

func (n *BalancedNode) String() string {
	return fmt.Sprintf(`\B%s%s`, n.Open, n.Close)
}

// Pattern is a compiled pattern: the tree plus its stable capture-group
// identities. Compiling the same text always yields the same numbering.
type Pattern struct {
	Source string
	Root   Node
	Groups int            // capturing group count
	Names  map[string]int // capture name -> 1-based group index
}

func (p *Pattern) String() string { return p.Source }
