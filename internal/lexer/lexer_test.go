package lexer

import (
	"testing"

	"github.com/funvibe/vela/internal/token"
)

type expectedToken struct {
	typ    token.TokenType
	lexeme string
	line   int
}

func scanAll(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func checkTokens(t *testing.T, input string, want []expectedToken) {
	t.Helper()
	got := scanAll(input)
	if len(got) != len(want) {
		for i, tok := range got {
			t.Logf("token %d: %v %q line %d", i, tok.Type, tok.Lexeme(input), tok.Line)
		}
		t.Fatalf("expected %d tokens, got %d", len(want), len(got))
	}
	for i, w := range want {
		tok := got[i]
		if tok.Type != w.typ || tok.Lexeme(input) != w.lexeme || tok.Line != w.line {
			t.Fatalf("token %d: expected %v %q line %d, got %v %q line %d",
				i, w.typ, w.lexeme, w.line, tok.Type, tok.Lexeme(input), tok.Line)
		}
	}
}

func TestLexerPunctuation(t *testing.T) {
	input := "(){},.-+;/* ! != = == > >= < <="
	checkTokens(t, input, []expectedToken{
		{token.LPAREN, "(", 1},
		{token.RPAREN, ")", 1},
		{token.LBRACE, "{", 1},
		{token.RBRACE, "}", 1},
		{token.COMMA, ",", 1},
		{token.DOT, ".", 1},
		{token.MINUS, "-", 1},
		{token.PLUS, "+", 1},
		{token.SEMICOLON, ";", 1},
		{token.ILLEGAL, MsgUnterminatedComment, 1},
		{token.EOF, "", 1},
	})
}

func TestLexerOperators(t *testing.T) {
	input := "/ * ! != = == > >= < <="
	checkTokens(t, input, []expectedToken{
		{token.SLASH, "/", 1},
		{token.ASTERISK, "*", 1},
		{token.BANG, "!", 1},
		{token.NOT_EQ, "!=", 1},
		{token.ASSIGN, "=", 1},
		{token.EQ, "==", 1},
		{token.GT, ">", 1},
		{token.GTE, ">=", 1},
		{token.LT, "<", 1},
		{token.LTE, "<=", 1},
		{token.EOF, "", 1},
	})
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	input := "and class else false for fun if nil null or print return super this true var while _x foo1 andy"
	checkTokens(t, input, []expectedToken{
		{token.AND, "and", 1},
		{token.CLASS, "class", 1},
		{token.ELSE, "else", 1},
		{token.FALSE, "false", 1},
		{token.FOR, "for", 1},
		{token.FUN, "fun", 1},
		{token.IF, "if", 1},
		{token.NULL, "nil", 1},
		{token.NULL, "null", 1},
		{token.OR, "or", 1},
		{token.PRINT, "print", 1},
		{token.RETURN, "return", 1},
		{token.SUPER, "super", 1},
		{token.THIS, "this", 1},
		{token.TRUE, "true", 1},
		{token.VAR, "var", 1},
		{token.WHILE, "while", 1},
		{token.IDENT, "_x", 1},
		{token.IDENT, "foo1", 1},
		{token.IDENT, "andy", 1},
		{token.EOF, "", 1},
	})
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []expectedToken
	}{
		{"integer", "123", []expectedToken{{token.NUMBER, "123", 1}, {token.EOF, "", 1}}},
		{"fraction", "3.25", []expectedToken{{token.NUMBER, "3.25", 1}, {token.EOF, "", 1}}},
		{"trailing dot", "7.", []expectedToken{{token.NUMBER, "7", 1}, {token.DOT, ".", 1}, {token.EOF, "", 1}}},
		{"dot then ident", "1.x", []expectedToken{
			{token.NUMBER, "1", 1}, {token.DOT, ".", 1}, {token.IDENT, "x", 1}, {token.EOF, "", 1},
		}},
		{"leading dot", ".5", []expectedToken{{token.DOT, ".", 1}, {token.NUMBER, "5", 1}, {token.EOF, "", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, tt.want)
		})
	}
}

func TestLexerCommentsAndLines(t *testing.T) {
	input := "1 // comment\n/* block\n   comment */ 2\n\n3"
	checkTokens(t, input, []expectedToken{
		{token.NUMBER, "1", 1},
		{token.NUMBER, "2", 3},
		{token.NUMBER, "3", 5},
		{token.EOF, "", 5},
	})
}

func TestLexerStrings(t *testing.T) {
	input := "\"hello\" \"multi\nline\" 1"
	checkTokens(t, input, []expectedToken{
		{token.STRING, "\"hello\"", 1},
		{token.STRING, "\"multi\nline\"", 2},
		{token.NUMBER, "1", 2},
		{token.EOF, "", 2},
	})
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []expectedToken
	}{
		{"unterminated string", "\"abc", []expectedToken{
			{token.ILLEGAL, MsgUnterminatedString, 1}, {token.EOF, "", 1},
		}},
		{"unterminated comment", "1 /* never\nclosed", []expectedToken{
			{token.NUMBER, "1", 1}, {token.ILLEGAL, MsgUnterminatedComment, 2}, {token.EOF, "", 2},
		}},
		{"unexpected char", "1 @ 2", []expectedToken{
			{token.NUMBER, "1", 1}, {token.ILLEGAL, MsgUnexpectedChar, 1}, {token.NUMBER, "2", 1}, {token.EOF, "", 1},
		}},
		{"multibyte rune", "é", []expectedToken{
			{token.ILLEGAL, MsgUnexpectedChar, 1}, {token.EOF, "", 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, tt.input, tt.want)
		})
	}
}

func TestLexerEOFIsIdempotent(t *testing.T) {
	l := New("1")
	if tok := l.NextToken(); tok.Type != token.NUMBER {
		t.Fatalf("expected NUMBER, got %v", tok.Type)
	}
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != token.EOF {
			t.Fatalf("call %d: expected EOF, got %v", i, tok.Type)
		}
	}
}

func TestLexemeIsViewIntoSource(t *testing.T) {
	input := "  12.5"
	tok := New(input).NextToken()
	if tok.Start != 2 || tok.Length != 4 {
		t.Fatalf("expected start=2 length=4, got start=%d length=%d", tok.Start, tok.Length)
	}
}
