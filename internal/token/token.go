// Package token defines the lexical tokens of the vela language.
package token

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// Single-character tokens
	LPAREN    TokenType = iota // (
	RPAREN                     // )
	LBRACE                     // {
	RBRACE                     // }
	COMMA                      // ,
	DOT                        // .
	MINUS                      // -
	PLUS                       // +
	SEMICOLON                  // ;
	SLASH                      // /
	ASTERISK                   // *

	// One or two character tokens
	BANG     // !
	NOT_EQ   // !=
	ASSIGN   // =
	EQ       // ==
	GT       // >
	GTE      // >=
	LT       // <
	LTE      // <=

	// Literals
	IDENT
	STRING
	NUMBER

	// Keywords
	AND
	CLASS
	ELSE
	FALSE
	FOR
	FUN
	IF
	NULL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	ILLEGAL // Lexical error; the message lives in Token.Message
	EOF

	tokenTypeCount
)

// Count is the number of token types; rule tables are sized by it.
const Count = int(tokenTypeCount)

var typeNames = [...]string{
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	COMMA:     "COMMA",
	DOT:       "DOT",
	MINUS:     "MINUS",
	PLUS:      "PLUS",
	SEMICOLON: "SEMICOLON",
	SLASH:     "SLASH",
	ASTERISK:  "ASTERISK",
	BANG:      "BANG",
	NOT_EQ:    "NOT_EQ",
	ASSIGN:    "ASSIGN",
	EQ:        "EQ",
	GT:        "GT",
	GTE:       "GTE",
	LT:        "LT",
	LTE:       "LTE",
	IDENT:     "IDENT",
	STRING:    "STRING",
	NUMBER:    "NUMBER",
	AND:       "AND",
	CLASS:     "CLASS",
	ELSE:      "ELSE",
	FALSE:     "FALSE",
	FOR:       "FOR",
	FUN:       "FUN",
	IF:        "IF",
	NULL:      "NULL",
	OR:        "OR",
	PRINT:     "PRINT",
	RETURN:    "RETURN",
	SUPER:     "SUPER",
	THIS:      "THIS",
	TRUE:      "TRUE",
	VAR:       "VAR",
	WHILE:     "WHILE",
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Keywords maps reserved words to their token types.
// Both "nil" and "null" spell the null literal.
var Keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NULL,
	"null":   NULL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is a view into the source text: Start and Length locate the lexeme,
// nothing is copied. ILLEGAL tokens carry a diagnostic in Message instead.
type Token struct {
	Type    TokenType
	Start   int
	Length  int
	Line    int
	Message string
}

// Lexeme returns the token text. It slices source, which must be the
// buffer the token was scanned from.
func (t Token) Lexeme(source string) string {
	if t.Type == ILLEGAL {
		return t.Message
	}
	if t.Start < 0 || t.Start+t.Length > len(source) {
		return ""
	}
	return source[t.Start : t.Start+t.Length]
}
