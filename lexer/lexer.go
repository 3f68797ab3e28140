// Package lexer turns TSX-ish source text into a typed token sequence.
//
// The lexer is a mode machine: script code, type annotations, markup tags,
// markup text, and embedded expressions each lex differently, and the modes
// nest arbitrarily (markup inside script inside markup ...). Nesting is
// tracked on an explicit frame stack rather than through call recursion.
package lexer

import (
	"fmt"

	"github.com/tokrex/tokrex/token"
)

// Options selects which trivia tokens are retained in the output sequence.
// The zero value elides both whitespace and comments.
type Options struct {
	IncludeWhitespace bool
	IncludeComments   bool
}

// Error is a fatal lexing failure, always an unterminated literal of some
// form. It carries the position where the offending literal started.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

type mode int

const (
	modeScript mode = iota // ordinary statements and expressions
	modeType               // after a type-introducing ':' or 'as'
	modeTag                // inside <...> before the closing '>'
	modeText               // between an opening and a closing tag
	modeExpr               // { ... } embedded in markup; script rules apply
)

// frame is one entry of the mode stack.
type frame struct {
	m mode

	// script / expr
	brackets []byte // open script brackets: '(', '[', '{'
	ternary  int    // '?' operators awaiting their ':'
	binding  bool   // statement started with let/const/var
	alias    bool   // statement is a `type X = ...` alias

	// expr
	braceDepth int // nested '{' since the ExprStart

	// tag
	closing bool // the tag began with '</'
	sawName bool // tag name already consumed

	// type
	depth     int  // generic/tuple/paren nesting inside the annotation
	asType    bool // entered via the 'as' keyword
	aliasBody bool // entered via `type X =`; braces do not terminate
}

// Lexer scans one source string. Use Tokenize unless the caller needs to
// hold intermediate state.
type Lexer struct {
	src  string
	pos  int
	opts Options

	line      int // 1-based
	lineStart int // offset of the first byte of the current line

	stack []frame
	toks  []token.Token
	prev  token.Token // last significant token, zero value at stream start

	pendingAs bool // an 'as' keyword was just emitted
}

// Tokenize scans source into a token sequence terminated by an EOF token.
// Unterminated strings, templates, regexes, and block comments return a
// *Error; there is no recovery mid-token.
func Tokenize(source string, opts Options) ([]token.Token, error) {
	l := New(source, opts)
	return l.Run()
}

// New returns a Lexer over source.
func New(source string, opts Options) *Lexer {
	return &Lexer{
		src:   source,
		opts:  opts,
		line:  1,
		stack: []frame{{m: modeScript}},
	}
}

// Run drives the mode machine until the input is exhausted.
func (l *Lexer) Run() ([]token.Token, error) {
	for l.pos < len(l.src) {
		var err error
		switch l.top().m {
		case modeScript, modeExpr:
			err = l.lexScript()
		case modeType:
			err = l.lexType()
		case modeTag:
			err = l.lexTag()
		case modeText:
			err = l.lexText()
		}
		if err != nil {
			return nil, err
		}
	}
	l.toks = append(l.toks, token.Token{
		Kind: token.EOF,
		Pos:  l.here(),
		End:  l.pos,
	})
	return l.toks, nil
}

func (l *Lexer) top() *frame { return &l.stack[len(l.stack)-1] }

func (l *Lexer) push(f frame) { l.stack = append(l.stack, f) }

func (l *Lexer) pop() { l.stack = l.stack[:len(l.stack)-1] }

// here is the position of the next unread byte.
func (l *Lexer) here() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.pos - l.lineStart + 1}
}

// advance moves the cursor to end, keeping line accounting current.
func (l *Lexer) advance(end int) {
	for i := l.pos; i < end; i++ {
		if l.src[i] == '\n' {
			l.line++
			l.lineStart = i + 1
		}
	}
	l.pos = end
}

// emit appends a token spanning [start.Offset, l.pos).
func (l *Lexer) emit(k token.Kind, start token.Pos) token.Token {
	tok := token.Token{
		Kind:  k,
		Value: l.src[start.Offset:l.pos],
		Pos:   start,
		End:   l.pos,
	}
	keep := true
	switch k {
	case token.Whitespace:
		keep = l.opts.IncludeWhitespace
	case token.Comment:
		keep = l.opts.IncludeComments
	}
	if keep {
		l.toks = append(l.toks, tok)
	}
	if tok.Significant() {
		l.prev = tok
	}
	return tok
}

func (l *Lexer) errorf(at token.Pos, format string, args ...any) error {
	return &Error{Pos: at, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

// lexScript handles modeScript and modeExpr, which differ only in how a
// top-level '}' is interpreted.
func (l *Lexer) lexScript() error {
	start := l.here()
	c := l.src[l.pos]
	f := l.top()

	switch {
	case isSpace(c):
		l.scanWhitespace()
		l.emit(token.Whitespace, start)

	case c == '/' && l.peekAt(1) == '/':
		l.scanLineComment()
		l.emit(token.Comment, start)

	case c == '/' && l.peekAt(1) == '*':
		if err := l.scanBlockComment(start); err != nil {
			return err
		}
		l.emit(token.Comment, start)

	case c == '"' || c == '\'':
		if err := l.scanString(start); err != nil {
			return err
		}
		l.emit(token.String, start)

	case c == '`':
		if err := l.scanTemplate(start); err != nil {
			return err
		}
		l.emit(token.Template, start)

	case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
		l.scanNumber()
		l.emit(token.Number, start)

	case isIdentStart(c):
		l.lexWord(start)

	case c == '/':
		if regexAllowed(l.prev) {
			if err := l.scanRegex(start); err != nil {
				return err
			}
			l.emit(token.Regex, start)
			break
		}
		l.scanOperator()
		l.emit(token.Operator, start)

	case c == '<' && l.markupAhead():
		l.advance(l.pos + 1)
		l.emit(token.TagOpen, start)
		l.push(frame{m: modeTag})

	case c == '{':
		if f.m == modeExpr {
			f.braceDepth++
		}
		f.brackets = append(f.brackets, '{')
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == '}':
		if f.m == modeExpr && f.braceDepth == 0 {
			l.advance(l.pos + 1)
			l.emit(token.ExprEnd, start)
			l.pop()
			break
		}
		if f.m == modeExpr {
			f.braceDepth--
		}
		l.popBracket('{')
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == '?':
		l.lexQuestion(start)

	case c == ':':
		l.lexColon(start)

	case c == '(' || c == '[':
		f.brackets = append(f.brackets, c)
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == ')' || c == ']':
		l.popBracket(openOf(c))
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == ',' || c == ';':
		if c == ';' {
			f.binding = false
			f.alias = false
		}
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	default:
		l.lexOperatorOrPunct(start)
	}
	return nil
}

// lexWord scans an identifier and reclassifies keywords, 'as' clauses, and
// binding introducers.
func (l *Lexer) lexWord(start token.Pos) {
	l.scanIdent()
	word := l.src[start.Offset:l.pos]
	f := l.top()

	if l.pendingAs {
		l.pendingAs = false
		if word == "const" {
			l.emit(token.AsConst, start)
			return
		}
		// Rewind: the word belongs to the type annotation the 'as'
		// keyword introduced.
		l.pos = start.Offset
		l.push(frame{m: modeType, asType: true})
		return
	}

	if word == "as" && postfixAsAllowed(l.prev) {
		l.emit(token.Keyword, start)
		l.pendingAs = true
		return
	}

	if keywords[word] {
		switch word {
		case "let", "const", "var":
			if len(f.brackets) == 0 {
				f.binding = true
			}
		}
		l.emit(token.Keyword, start)
		return
	}

	// `type X = ...` introduces a type-alias body after the '='.
	if word == "type" && len(f.brackets) == 0 && isIdentStart(l.peekPastSpace()) && statementStart(l.prev) {
		f.alias = true
		l.emit(token.Keyword, start)
		return
	}

	l.emit(token.Ident, start)
}

// lexQuestion distinguishes '?.', '??', '??=', the optional-member marker
// of `a?: T`, and the ternary operator.
func (l *Lexer) lexQuestion(start token.Pos) {
	f := l.top()
	switch {
	case l.peekAt(1) == '.':
		l.advance(l.pos + 2)
		l.emit(token.Operator, start)
	case l.peekAt(1) == '?':
		n := 2
		if l.peekAt(2) == '=' {
			n = 3
		}
		l.advance(l.pos + n)
		l.emit(token.Operator, start)
	case l.nextSignificantByte(1) == ':':
		l.advance(l.pos + 1)
		l.emit(token.Question, start)
	default:
		f.ternary++
		l.advance(l.pos + 1)
		l.emit(token.Operator, start)
	}
}

// lexColon decides between a ternary ':' and a type-annotation entry.
func (l *Lexer) lexColon(start token.Pos) {
	f := l.top()
	if f.ternary > 0 {
		f.ternary--
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)
		return
	}
	if l.typeEntry() {
		l.advance(l.pos + 1)
		l.emit(token.Colon, start)
		l.push(frame{m: modeType})
		return
	}
	l.advance(l.pos + 1)
	l.emit(token.Punct, start)
}

// typeEntry reports whether a ':' at the cursor introduces a type
// annotation: a binding (`let x: T`), a parameter (`(x: T)`), a return type
// (`(): T`), or an optional member (`x?: T`).
func (l *Lexer) typeEntry() bool {
	f := l.top()
	switch l.prev.Kind {
	case token.Question:
		return true
	case token.Ident:
		if f.binding && len(f.brackets) == 0 {
			return true
		}
		return len(f.brackets) > 0 && f.brackets[len(f.brackets)-1] == '('
	case token.Punct:
		return l.prev.Value == ")"
	}
	return false
}

func (l *Lexer) lexOperatorOrPunct(start token.Pos) {
	f := l.top()
	l.scanOperator()
	op := l.src[start.Offset:l.pos]
	switch op {
	case ".", "...":
		l.emit(token.Punct, start)
	case "=":
		if f.alias {
			f.alias = false
			l.emit(token.Operator, start)
			l.push(frame{m: modeType, aliasBody: true})
			return
		}
		f.binding = false
		l.emit(token.Operator, start)
	default:
		l.emit(token.Operator, start)
	}
}

func (l *Lexer) popBracket(open byte) {
	f := l.top()
	if n := len(f.brackets); n > 0 && f.brackets[n-1] == open {
		f.brackets = f.brackets[:n-1]
	}
}

// markupAhead applies the tag-start heuristic: '<' opens markup only in an
// expression position with a name or fragment close ahead, otherwise it is
// a comparison operator.
func (l *Lexer) markupAhead() bool {
	if !exprPosition(l.prev) {
		return false
	}
	next := l.peekAt(1)
	return isIdentStart(next) || next == '>'
}

// nextSignificantByte looks past horizontal whitespace starting at offset
// off from the cursor.
func (l *Lexer) nextSignificantByte(off int) byte {
	i := l.pos + off
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		i++
	}
	if i < len(l.src) {
		return l.src[i]
	}
	return 0
}

// peekPastSpace is the first non-blank byte at or after the cursor.
func (l *Lexer) peekPastSpace() byte {
	return l.nextSignificantByte(0)
}

func openOf(close byte) byte {
	switch close {
	case ')':
		return '('
	case ']':
		return '['
	}
	return 0
}

// exprPosition reports whether the next token would be read in expression
// position, given the previous significant token.
func exprPosition(prev token.Token) bool {
	switch prev.Kind {
	case token.Invalid: // stream start
		return true
	case token.Operator, token.ExprStart, token.Colon, token.Arrow:
		return true
	case token.Keyword:
		return exprKeywords[prev.Value]
	case token.Punct:
		switch prev.Value {
		case "(", "[", "{", ",", ";", ":":
			return true
		}
	}
	return false
}

// regexAllowed mirrors exprPosition: a '/' starts a regex literal exactly
// where an expression may begin.
func regexAllowed(prev token.Token) bool {
	return exprPosition(prev)
}

// postfixAsAllowed reports whether 'as' after prev is the cast keyword.
func postfixAsAllowed(prev token.Token) bool {
	switch prev.Kind {
	case token.Ident, token.String, token.Number, token.Template, token.Regex, token.GenericClose:
		return true
	case token.Punct:
		return prev.Value == ")" || prev.Value == "]"
	}
	return false
}

func statementStart(prev token.Token) bool {
	switch prev.Kind {
	case token.Invalid:
		return true
	case token.Punct:
		return prev.Value == ";" || prev.Value == "{" || prev.Value == "}"
	case token.Keyword:
		return prev.Value == "export" || prev.Value == "declare"
	}
	return false
}

var keywords = map[string]bool{
	"abstract": true, "as": true, "async": true, "await": true,
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "declare": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true, "from": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "of": true, "private": true, "protected": true,
	"public": true, "readonly": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "undefined": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

// exprKeywords are keywords after which an expression (and therefore a
// regex literal or a markup tag) may begin.
var exprKeywords = map[string]bool{
	"return": true, "throw": true, "new": true, "delete": true,
	"typeof": true, "void": true, "in": true, "of": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
	"instanceof": true,
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
