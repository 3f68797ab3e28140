package pattern

import (
	"fmt"
	"strings"

	"github.com/tokrex/tokrex/token"
)

// SyntaxError is a fatal compile-time failure. Offset is a byte offset
// into the pattern text, not into any source file.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d: %s", e.Offset, e.Msg)
}

// classLetters maps shorthand letters to token kinds. The uppercase form
// of each letter matches every kind but the mapped one. 'b' is reserved
// for the balanced-region macro.
var classLetters = map[byte]token.Kind{
	'k': token.Keyword,
	'i': token.Ident,
	's': token.String,
	'n': token.Number,
	'o': token.Operator,
	'p': token.Punct,
	'c': token.Comment,
	'w': token.Whitespace,
	't': token.Template,
	'r': token.Regex,
	'e': token.EOF,
	'l': token.Colon,
	'g': token.GenericOpen,
	'h': token.GenericClose,
	'y': token.TypeName,
	'q': token.Question,
	'a': token.Arrow,
	'z': token.TypeOp,
	'x': token.Extends,
	'u': token.TupleOpen,
	'v': token.TupleClose,
	'm': token.MappedIn,
	'd': token.AsConst,
}

// balancedPairs maps the letter after \B to its bracket pair.
var balancedPairs = map[byte][2]string{
	'p': {"(", ")"},
	'b': {"{", "}"},
	's': {"[", "]"},
	'a': {"<", ">"},
}

// Compile parses pattern text into an immutable Pattern. It is pure and
// deterministic; malformed input returns a *SyntaxError.
func Compile(text string) (*Pattern, error) {
	p := &parser{src: text, names: map[string]int{}}
	root, err := p.parseAlternation(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errorf(p.pos, "unexpected %q", p.src[p.pos])
	}
	if err := p.resolveBackrefs(); err != nil {
		return nil, err
	}
	return &Pattern{
		Source: text,
		Root:   root,
		Groups: p.groups,
		Names:  p.names,
	}, nil
}

// MustCompile is like Compile but panics on malformed input. It simplifies
// initialization of registration tables from constant patterns.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic("pattern: MustCompile: " + err.Error())
	}
	return p
}

type pendingRef struct {
	node   *BackrefNode
	offset int
}

type parser struct {
	src    string
	pos    int
	groups int
	names  map[string]int
	refs   []pendingRef
}

func (p *parser) errorf(off int, format string, args ...any) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off < len(p.src) {
		return p.src[p.pos+off]
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

// parseAlternation parses sequences separated by '|' until term (0 means
// end of input). The terminator is left unconsumed.
func (p *parser) parseAlternation(term byte) (Node, error) {
	var branches []Node
	for {
		seq, err := p.parseSequence(term)
		if err != nil {
			return nil, err
		}
		branches = append(branches, seq)
		p.skipSpace()
		if p.peek() != '|' {
			break
		}
		p.pos++
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return &AltNode{Branches: branches}, nil
}

func (p *parser) parseSequence(term byte) (Node, error) {
	var nodes []Node
	for {
		p.skipSpace()
		c := p.peek()
		if c == 0 || c == term || c == '|' {
			break
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		atom, err = p.parseQuantifier(atom)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, atom)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &SeqNode{Nodes: nodes}, nil
}

func (p *parser) parseAtom() (Node, error) {
	off := p.pos
	switch c := p.peek(); c {
	case '.':
		p.pos++
		return &AnyNode{}, nil
	case '"':
		value, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		return &LiteralNode{Kind: token.Invalid, Value: value}, nil
	case '\\':
		return p.parseEscape()
	case '(':
		return p.parseGroup()
	case '[':
		p.pos++
		inner, err := p.parseAlternation(']')
		if err != nil {
			return nil, err
		}
		if p.peek() != ']' {
			return nil, p.errorf(off, "unclosed '['")
		}
		p.pos++
		return &GroupNode{Node: inner}, nil
	default:
		return nil, p.errorf(off, "unexpected %q", c)
	}
}

// parseQuoted reads a double-quoted literal with \" and \\ escapes.
func (p *parser) parseQuoted() (string, error) {
	off := p.pos
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf(off, "unterminated literal")
			}
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf(off, "unterminated literal")
}

func (p *parser) parseEscape() (Node, error) {
	off := p.pos
	p.pos++ // backslash
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf(off, "trailing backslash")

	case c >= '1' && c <= '9':
		idx := 0
		for isDigitByte(p.peek()) {
			idx = idx*10 + int(p.peek()-'0')
			p.pos++
		}
		node := &BackrefNode{Index: idx, Depth: p.parseDepthSuffix()}
		p.refs = append(p.refs, pendingRef{node: node, offset: off})
		return node, nil

	case c == 'B':
		p.pos++
		pair, ok := balancedPairs[p.peek()]
		if !ok {
			return nil, p.errorf(off, "unknown balanced pair %q", p.peek())
		}
		p.pos++
		return &BalancedNode{Open: pair[0], Close: pair[1]}, nil

	case c == 'k' && p.peekAt(1) == '<':
		p.pos += 2
		name, err := p.parseName(off, '>')
		if err != nil {
			return nil, err
		}
		node := &BackrefNode{Index: -1, Name: name, Depth: p.parseDepthSuffix()}
		p.refs = append(p.refs, pendingRef{node: node, offset: off})
		return node, nil

	case c == '<':
		p.pos++
		negate := false
		if p.peek() == '!' {
			negate = true
			p.pos++
		}
		name, err := p.parseName(off, '>')
		if err != nil {
			return nil, err
		}
		kind, ok := token.KindByName(name)
		if !ok {
			return nil, p.errorf(off, "unknown token kind %q", name)
		}
		return &ClassNode{Kind: kind, Negate: negate}, nil

	default:
		lower := c | 0x20
		kind, ok := classLetters[lower]
		if !ok {
			return nil, p.errorf(off, "unknown shorthand %q", c)
		}
		negate := c >= 'A' && c <= 'Z'
		p.pos++
		if p.peek() == '"' {
			if negate {
				return nil, p.errorf(off, "negated class cannot carry a literal")
			}
			value, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}
			return &LiteralNode{Kind: kind, Value: value}, nil
		}
		return &ClassNode{Kind: kind, Negate: negate}, nil
	}
}

// parseDepthSuffix reads an optional @N nesting-depth constraint.
func (p *parser) parseDepthSuffix() int {
	if p.peek() != '@' || !isDigitByte(p.peekAt(1)) {
		return -1
	}
	p.pos++
	depth := 0
	for isDigitByte(p.peek()) {
		depth = depth*10 + int(p.peek()-'0')
		p.pos++
	}
	return depth
}

func (p *parser) parseName(off int, term byte) (string, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != term {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", p.errorf(off, "unterminated name")
	}
	name := p.src[start:p.pos]
	p.pos++ // terminator
	if name == "" {
		return "", p.errorf(off, "empty name")
	}
	return name, nil
}

func (p *parser) parseGroup() (Node, error) {
	off := p.pos
	p.pos++ // '('

	var (
		behind, negative, look bool
		capture                = true
		name                   string
	)
	if p.peek() == '?' {
		switch {
		case p.peekAt(1) == ':':
			p.pos += 2
			capture = false
		case p.peekAt(1) == '=':
			p.pos += 2
			look = true
		case p.peekAt(1) == '!':
			p.pos += 2
			look, negative = true, true
		case p.peekAt(1) == '<' && p.peekAt(2) == '=':
			p.pos += 3
			look, behind = true, true
		case p.peekAt(1) == '<' && p.peekAt(2) == '!':
			p.pos += 3
			look, behind, negative = true, true, true
		case p.peekAt(1) == '<':
			p.pos += 2
			var err error
			name, err = p.parseName(off, '>')
			if err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf(off, "unknown group prefix")
		}
	}

	index := 0
	if capture && !look {
		p.groups++
		index = p.groups
		if name != "" {
			if _, dup := p.names[name]; dup {
				return nil, p.errorf(off, "duplicate capture name %q", name)
			}
			p.names[name] = index
		}
	}

	inner, err := p.parseAlternation(')')
	if err != nil {
		return nil, err
	}
	if p.peek() != ')' {
		return nil, p.errorf(off, "unclosed group")
	}
	p.pos++

	if look {
		return &LookNode{Node: inner, Behind: behind, Negative: negative}, nil
	}
	return &GroupNode{Index: index, Name: name, Node: inner}, nil
}

// parseQuantifier attaches a quantifier to atom when one follows.
func (p *parser) parseQuantifier(atom Node) (Node, error) {
	off := p.pos
	var min, max int
	switch p.peek() {
	case '*':
		min, max = 0, -1
		p.pos++
	case '+':
		min, max = 1, -1
		p.pos++
	case '?':
		min, max = 0, 1
		p.pos++
	case '{':
		p.pos++
		if !isDigitByte(p.peek()) {
			return nil, p.errorf(off, "malformed quantifier")
		}
		min = p.parseInt()
		max = min
		if p.peek() == ',' {
			p.pos++
			max = -1
			if isDigitByte(p.peek()) {
				max = p.parseInt()
			}
		}
		if p.peek() != '}' {
			return nil, p.errorf(off, "malformed quantifier")
		}
		p.pos++
		if max >= 0 && min > max {
			return nil, p.errorf(off, "quantifier minimum %d exceeds maximum %d", min, max)
		}
	default:
		return atom, nil
	}

	lazy := false
	if p.peek() == '?' {
		lazy = true
		p.pos++
	}
	return &QuantNode{Node: atom, Min: min, Max: max, Lazy: lazy}, nil
}

func (p *parser) parseInt() int {
	n := 0
	for isDigitByte(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		p.pos++
	}
	return n
}

// resolveBackrefs validates positional references and binds named ones to
// their group indices.
func (p *parser) resolveBackrefs() error {
	for _, ref := range p.refs {
		if ref.node.Name != "" {
			idx, ok := p.names[ref.node.Name]
			if !ok {
				return p.errorf(ref.offset, "backreference to undeclared name %q", ref.node.Name)
			}
			ref.node.Index = idx
			continue
		}
		if ref.node.Index < 1 || ref.node.Index > p.groups {
			return p.errorf(ref.offset, "backreference to undeclared group %d", ref.node.Index)
		}
	}
	return nil
}

func isDigitByte(c byte) bool { return '0' <= c && c <= '9' }
