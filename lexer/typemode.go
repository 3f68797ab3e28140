package lexer

import "github.com/tokrex/tokrex/token"

// typeOperators are words reclassified to the type-operator kind inside an
// annotation.
var typeOperators = map[string]bool{
	"typeof": true, "keyof": true, "infer": true, "readonly": true,
	"unique": true,
}

// lexType scans one token in TypeAnnotation mode. The annotation ends at
// the first top-level '{', ';', ',', '=', or ')' that is not nested inside
// generic, tuple, or paren brackets; the terminator itself is left for the
// surrounding mode. A `type X = ...` alias body instead treats '{' as part
// of the type so that mapped and object types lex in context.
func (l *Lexer) lexType() error {
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

	case c == '<':
		f.depth++
		l.advance(l.pos + 1)
		l.emit(token.GenericOpen, start)

	case c == '>':
		if f.depth > 0 {
			f.depth--
		}
		l.advance(l.pos + 1)
		l.emit(token.GenericClose, start)

	case c == '[':
		f.depth++
		l.advance(l.pos + 1)
		l.emit(token.TupleOpen, start)

	case c == ']':
		if f.depth > 0 {
			f.depth--
		}
		l.advance(l.pos + 1)
		l.emit(token.TupleClose, start)

	case c == '(':
		f.depth++
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == ')':
		if f.depth == 0 {
			l.pop()
			return nil
		}
		f.depth--
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case c == '{':
		if f.aliasBody || f.depth > 0 {
			f.depth++
			l.advance(l.pos + 1)
			l.emit(token.Punct, start)
			return nil
		}
		l.pop()

	case c == '}':
		if f.depth > 0 {
			f.depth--
			l.advance(l.pos + 1)
			l.emit(token.Punct, start)
			return nil
		}
		l.pop()

	case c == ';' || c == ',':
		if f.depth > 0 {
			l.advance(l.pos + 1)
			l.emit(token.Punct, start)
			return nil
		}
		l.pop()

	case c == '=':
		if l.peekAt(1) == '>' {
			l.advance(l.pos + 2)
			l.emit(token.Arrow, start)
			return nil
		}
		l.pop()

	case c == '?':
		l.advance(l.pos + 1)
		l.emit(token.Question, start)

	case c == ':':
		l.advance(l.pos + 1)
		l.emit(token.Colon, start)

	case c == '|' || c == '&':
		l.advance(l.pos + 1)
		l.emit(token.TypeOp, start)

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

	case isDigit(c):
		l.scanNumber()
		l.emit(token.Number, start)

	case isIdentStart(c):
		l.scanIdent()
		word := l.src[start.Offset:l.pos]
		switch {
		case word == "extends":
			l.emit(token.Extends, start)
		case word == "in":
			l.emit(token.MappedIn, start)
		case word == "const" && f.asType:
			l.emit(token.AsConst, start)
		case typeOperators[word]:
			l.emit(token.TypeOp, start)
		default:
			l.emit(token.TypeName, start)
		}

	case c == '.':
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	default:
		l.scanOperator()
		l.emit(token.Operator, start)
	}
	return nil
}
