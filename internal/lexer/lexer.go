package lexer

import (
	"unicode/utf8"

	"github.com/funvibe/vela/internal/token"
)

// Diagnostic texts carried by ILLEGAL tokens.
const (
	MsgUnexpectedChar      = "Unexpected character."
	MsgUnterminatedString  = "Unterminated string."
	MsgUnterminatedComment = "Unterminated comment."
)

// Lexer produces tokens on demand. It never rewinds; once the input is
// exhausted every call returns EOF.
type Lexer struct {
	input        string
	position     int // start of the lexeme being scanned
	readPosition int // next unread byte
	line         int
}

func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() token.Token {
	if tok, ok := l.skipWhitespace(); !ok {
		return tok
	}

	l.position = l.readPosition
	if l.isAtEnd() {
		return l.makeToken(token.EOF)
	}

	ch := l.readChar()

	if isAlpha(ch) {
		return l.readIdentifier()
	}
	if isDigit(ch) {
		return l.readNumber()
	}

	switch ch {
	case '(':
		return l.makeToken(token.LPAREN)
	case ')':
		return l.makeToken(token.RPAREN)
	case '{':
		return l.makeToken(token.LBRACE)
	case '}':
		return l.makeToken(token.RBRACE)
	case ';':
		return l.makeToken(token.SEMICOLON)
	case ',':
		return l.makeToken(token.COMMA)
	case '.':
		return l.makeToken(token.DOT)
	case '-':
		return l.makeToken(token.MINUS)
	case '+':
		return l.makeToken(token.PLUS)
	case '/':
		return l.makeToken(token.SLASH)
	case '*':
		return l.makeToken(token.ASTERISK)
	case '!':
		if l.match('=') {
			return l.makeToken(token.NOT_EQ)
		}
		return l.makeToken(token.BANG)
	case '=':
		if l.match('=') {
			return l.makeToken(token.EQ)
		}
		return l.makeToken(token.ASSIGN)
	case '<':
		if l.match('=') {
			return l.makeToken(token.LTE)
		}
		return l.makeToken(token.LT)
	case '>':
		if l.match('=') {
			return l.makeToken(token.GTE)
		}
		return l.makeToken(token.GT)
	case '"':
		return l.readString()
	}

	// Swallow the rest of a multi-byte rune so it is reported once.
	if ch >= utf8.RuneSelf {
		_, w := utf8.DecodeRuneInString(l.input[l.position:])
		l.readPosition = l.position + w
	}
	return l.errorToken(MsgUnexpectedChar)
}

func (l *Lexer) isAtEnd() bool {
	return l.readPosition >= len(l.input)
}

func (l *Lexer) readChar() byte {
	ch := l.input[l.readPosition]
	l.readPosition++
	return ch
}

func (l *Lexer) peekChar() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekNext() byte {
	if l.readPosition+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.input[l.readPosition] != expected {
		return false
	}
	l.readPosition++
	return true
}

// skipWhitespace skips blanks and comments. It reports false together with
// an ILLEGAL token when a block comment runs off the end of the input.
func (l *Lexer) skipWhitespace() (token.Token, bool) {
	for !l.isAtEnd() {
		switch l.peekChar() {
		case ' ', '\r', '\t':
			l.readPosition++
		case '\n':
			l.line++
			l.readPosition++
		case '/':
			switch l.peekNext() {
			case '/':
				for l.peekChar() != '\n' && !l.isAtEnd() {
					l.readPosition++
				}
			case '*':
				l.position = l.readPosition
				l.readPosition += 2
				if !l.skipBlockComment() {
					return l.errorToken(MsgUnterminatedComment), false
				}
			default:
				return token.Token{}, true
			}
		default:
			return token.Token{}, true
		}
	}
	return token.Token{}, true
}

// skipBlockComment consumes up to and including the closing */.
// Block comments do not nest.
func (l *Lexer) skipBlockComment() bool {
	for !l.isAtEnd() {
		if l.peekChar() == '*' && l.peekNext() == '/' {
			l.readPosition += 2
			return true
		}
		if l.peekChar() == '\n' {
			l.line++
		}
		l.readPosition++
	}
	return false
}

func (l *Lexer) readIdentifier() token.Token {
	for isAlpha(l.peekChar()) || isDigit(l.peekChar()) {
		l.readPosition++
	}
	return l.makeToken(token.LookupIdent(l.input[l.position:l.readPosition]))
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peekChar()) {
		l.readPosition++
	}

	// A fractional part needs at least one digit after the dot.
	if l.peekChar() == '.' && isDigit(l.peekNext()) {
		l.readPosition++
		for isDigit(l.peekChar()) {
			l.readPosition++
		}
	}

	return l.makeToken(token.NUMBER)
}

func (l *Lexer) readString() token.Token {
	for l.peekChar() != '"' && !l.isAtEnd() {
		if l.peekChar() == '\n' {
			l.line++
		}
		l.readPosition++
	}

	if l.isAtEnd() {
		return l.errorToken(MsgUnterminatedString)
	}

	l.readPosition++ // closing quote
	return l.makeToken(token.STRING)
}

func (l *Lexer) makeToken(t token.TokenType) token.Token {
	return token.Token{
		Type:   t,
		Start:  l.position,
		Length: l.readPosition - l.position,
		Line:   l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:    token.ILLEGAL,
		Start:   l.position,
		Length:  l.readPosition - l.position,
		Line:    l.line,
		Message: message,
	}
}

func isAlpha(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
