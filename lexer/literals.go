package lexer

import "github.com/tokrex/tokrex/token"

// scanWhitespace consumes a run of blanks and newlines.
func (l *Lexer) scanWhitespace() {
	end := l.pos
	for end < len(l.src) && isSpace(l.src[end]) {
		end++
	}
	l.advance(end)
}

// scanLineComment consumes `//` up to, but not including, the newline.
func (l *Lexer) scanLineComment() {
	end := l.pos + 2
	for end < len(l.src) && l.src[end] != '\n' {
		end++
	}
	l.advance(end)
}

// scanBlockComment consumes `/* ... */`. A missing terminator is fatal.
func (l *Lexer) scanBlockComment(start token.Pos) error {
	end := l.pos + 2
	for end+1 < len(l.src) {
		if l.src[end] == '*' && l.src[end+1] == '/' {
			l.advance(end + 2)
			return nil
		}
		end++
	}
	return l.errorf(start, "unterminated block comment")
}

// scanString consumes a single- or double-quoted string. A newline or end
// of input before the closing quote is fatal.
func (l *Lexer) scanString(start token.Pos) error {
	quote := l.src[l.pos]
	end := l.pos + 1
	for end < len(l.src) {
		switch l.src[end] {
		case '\\':
			end += 2
			continue
		case '\n':
			return l.errorf(start, "unterminated string literal")
		case quote:
			l.advance(end + 1)
			return nil
		}
		end++
	}
	return l.errorf(start, "unterminated string literal")
}

// scanTemplate consumes a backtick template as one opaque token, including
// its `${...}` interpolations. Brace depth per interpolation and nested
// templates are tracked on an explicit stack.
func (l *Lexer) scanTemplate(start token.Pos) error {
	end := l.pos + 1

	// Stack entries: -1 means "inside template text", >= 0 is the brace
	// depth of an open interpolation.
	stack := []int{-1}

	for end < len(l.src) {
		c := l.src[end]
		top := len(stack) - 1
		if stack[top] == -1 {
			switch c {
			case '\\':
				end++
			case '`':
				stack = stack[:top]
				if len(stack) == 0 {
					l.advance(end + 1)
					return nil
				}
			case '$':
				if end+1 < len(l.src) && l.src[end+1] == '{' {
					stack = append(stack, 0)
					end++
				}
			}
		} else {
			switch c {
			case '`':
				stack = append(stack, -1)
			case '{':
				stack[top]++
			case '}':
				if stack[top] == 0 {
					stack = stack[:top]
				} else {
					stack[top]--
				}
			}
		}
		end++
	}
	return l.errorf(start, "unterminated template literal")
}

// scanRegex consumes a /.../flags literal. A '/' inside a character class
// does not terminate the literal. Newline or end of input is fatal.
func (l *Lexer) scanRegex(start token.Pos) error {
	end := l.pos + 1
	inClass := false
	for end < len(l.src) {
		switch l.src[end] {
		case '\\':
			end += 2
			continue
		case '\n':
			return l.errorf(start, "unterminated regex literal")
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				end++
				for end < len(l.src) && isIdentPart(l.src[end]) {
					end++
				}
				l.advance(end)
				return nil
			}
		}
		end++
	}
	return l.errorf(start, "unterminated regex literal")
}

// scanNumber consumes decimal, hex, octal, binary, bigint, and exponent
// forms, with '_' separators.
func (l *Lexer) scanNumber() {
	end := l.pos
	if l.src[end] == '0' && end+1 < len(l.src) {
		switch l.src[end+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			end += 2
			for end < len(l.src) && (isHexDigit(l.src[end]) || l.src[end] == '_') {
				end++
			}
			if end < len(l.src) && l.src[end] == 'n' {
				end++
			}
			l.advance(end)
			return
		}
	}
	for end < len(l.src) && (isDigit(l.src[end]) || l.src[end] == '_') {
		end++
	}
	if end < len(l.src) && l.src[end] == '.' {
		end++
		for end < len(l.src) && (isDigit(l.src[end]) || l.src[end] == '_') {
			end++
		}
	}
	if end < len(l.src) && (l.src[end] == 'e' || l.src[end] == 'E') {
		exp := end + 1
		if exp < len(l.src) && (l.src[exp] == '+' || l.src[exp] == '-') {
			exp++
		}
		if exp < len(l.src) && isDigit(l.src[exp]) {
			end = exp
			for end < len(l.src) && isDigit(l.src[end]) {
				end++
			}
		}
	}
	if end < len(l.src) && l.src[end] == 'n' {
		end++
	}
	l.advance(end)
}

// scanIdent consumes an identifier or keyword.
func (l *Lexer) scanIdent() {
	end := l.pos
	for end < len(l.src) && isIdentPart(l.src[end]) {
		end++
	}
	l.advance(end)
}

// operators, longest first per leading byte. Scanning tries the longest
// textual match.
var operatorRuns = []string{
	">>>=", "===", "!==", "**=", "<<=", ">>=", "&&=", "||=", "??=", ">>>",
	"...", "=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^", "~", ".",
	"@", "#",
}

// scanOperator consumes the longest operator at the cursor, or a single
// byte when nothing matches.
func (l *Lexer) scanOperator() {
	rest := l.src[l.pos:]
	for _, op := range operatorRuns {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			l.advance(l.pos + len(op))
			return
		}
	}
	l.advance(l.pos + 1)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
