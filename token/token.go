// Package token defines the lexical token vocabulary shared by the lexer,
// the pattern compiler, the matcher, and the dispatch engine.
package token

import "fmt"

// Kind classifies a token. Script kinds come first, followed by the
// type-annotation kinds produced in type context and the markup kinds
// produced inside TSX tags and text.
type Kind int

const (
	Invalid Kind = iota
	EOF

	// script
	Keyword
	Ident
	String
	Number
	Operator
	Punct
	Comment
	Whitespace
	Template
	Regex

	// type context
	Colon
	GenericOpen
	GenericClose
	TypeName
	Question
	Arrow
	TypeOp
	Extends
	TupleOpen
	TupleClose
	MappedIn
	AsConst

	// markup
	TagOpen
	TagClose
	SelfClose
	TagEnd
	AttrName
	AttrValue
	Text
	ExprStart
	ExprEnd
)

var kindNames = map[Kind]string{
	Invalid:      "invalid",
	EOF:          "eof",
	Keyword:      "keyword",
	Ident:        "identifier",
	String:       "string",
	Number:       "number",
	Operator:     "operator",
	Punct:        "punctuation",
	Comment:      "comment",
	Whitespace:   "whitespace",
	Template:     "template-string",
	Regex:        "regex",
	Colon:        "colon",
	GenericOpen:  "generic-open",
	GenericClose: "generic-close",
	TypeName:     "type-name",
	Question:     "question-mark",
	Arrow:        "arrow",
	TypeOp:       "type-operator",
	Extends:      "extends",
	TupleOpen:    "tuple-open",
	TupleClose:   "tuple-close",
	MappedIn:     "mapped-in",
	AsConst:      "as-const",
	TagOpen:      "tag-open",
	TagClose:     "tag-close",
	SelfClose:    "self-close",
	TagEnd:       "tag-end",
	AttrName:     "attribute-name",
	AttrValue:    "attribute-value",
	Text:         "text",
	ExprStart:    "expression-start",
	ExprEnd:      "expression-end",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindByName resolves the canonical kind name used in pattern text
// (e.g. "tag-open") back to its Kind. The second result reports whether
// the name is known.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return Invalid, false
}

// Pos is a byte offset into the original source plus its 1-based
// line/column coordinates.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one classified unit of source text. Tokens are immutable once
// produced; components refer to them by index into the owning sequence.
type Token struct {
	Kind  Kind
	Value string
	Pos   Pos // start of the token
	End   int // byte offset one past the token's last byte
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Value, t.Pos)
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }

// IsValue reports whether the token's exact source text equals v.
func (t Token) IsValue(v string) bool { return t.Value == v }

// Synthetic builds a token that has no backing source span, used by
// token-edit operations to splice new content into reconstruction.
func Synthetic(k Kind, value string) Token {
	return Token{Kind: k, Value: value, Pos: Pos{Offset: -1}, End: -1}
}

// IsSynthetic reports whether the token was created by Synthetic rather
// than by the lexer.
func (t Token) IsSynthetic() bool { return t.Pos.Offset < 0 }

// Significant reports whether the token takes part in disambiguation
// decisions (everything except whitespace and comments).
func (t Token) Significant() bool {
	return t.Kind != Whitespace && t.Kind != Comment
}
