package lexer

import "github.com/tokrex/tokrex/token"

// lexTag scans inside an open or closing tag, between the '<' (or '</')
// and the tag's terminating '>' or '/>'.
func (l *Lexer) lexTag() error {
	start := l.here()
	c := l.src[l.pos]
	f := l.top()

	switch {
	case isSpace(c):
		l.scanWhitespace()
		l.emit(token.Whitespace, start)

	case c == '>':
		l.advance(l.pos + 1)
		l.emit(token.TagEnd, start)
		closing := f.closing
		l.pop()
		if closing {
			// the element is finished; leave its text mode too
			if len(l.stack) > 0 && l.top().m == modeText {
				l.pop()
			}
		} else {
			l.push(frame{m: modeText})
		}

	case c == '/' && l.peekAt(1) == '>':
		l.advance(l.pos + 2)
		l.emit(token.SelfClose, start)
		l.pop()

	case c == '{':
		l.advance(l.pos + 1)
		l.emit(token.ExprStart, start)
		l.push(frame{m: modeExpr})

	case c == '"' || c == '\'':
		if err := l.scanString(start); err != nil {
			return err
		}
		l.emit(token.AttrValue, start)

	case c == '=':
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)

	case isIdentStart(c):
		l.scanTagWord()
		if f.sawName {
			l.emit(token.AttrName, start)
		} else {
			f.sawName = true
			l.emit(token.Ident, start)
		}

	default:
		l.advance(l.pos + 1)
		l.emit(token.Punct, start)
	}
	return nil
}

// scanTagWord consumes a tag or attribute name; dots and dashes are part
// of the name (`Foo.Bar`, `data-id`).
func (l *Lexer) scanTagWord() {
	end := l.pos
	for end < len(l.src) && (isIdentPart(l.src[end]) || l.src[end] == '.' || l.src[end] == '-') {
		end++
	}
	l.advance(end)
}

// lexText scans between tags. Text runs until a tag boundary or an
// embedded expression; the raw run, whitespace included, is one token.
func (l *Lexer) lexText() error {
	start := l.here()
	c := l.src[l.pos]

	switch {
	case c == '<' && l.peekAt(1) == '/':
		l.advance(l.pos + 2)
		l.emit(token.TagClose, start)
		l.push(frame{m: modeTag, closing: true})

	case c == '<':
		l.advance(l.pos + 1)
		l.emit(token.TagOpen, start)
		l.push(frame{m: modeTag})

	case c == '{':
		l.advance(l.pos + 1)
		l.emit(token.ExprStart, start)
		l.push(frame{m: modeExpr})

	default:
		end := l.pos
		for end < len(l.src) && l.src[end] != '<' && l.src[end] != '{' {
			end++
		}
		l.advance(end)
		l.emit(token.Text, start)
	}
	return nil
}
