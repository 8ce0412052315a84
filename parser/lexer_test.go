package parser

import "testing"

func TestLexerTokenizesBasicLine(t *testing.T) {
	l := NewLexer("ADD R0,R1,R2 ; comment\n", "t.asm")
	tokens := l.TokenizeAll()

	want := []TokenType{TokenWord, TokenWord, TokenComma, TokenWord, TokenComma, TokenWord, TokenNewline, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("token[%d].Type = %v, want %v", i, tokens[i].Type, tt)
		}
	}
}

func TestLexerStringLiteralNoEscapes(t *testing.T) {
	l := NewLexer(`.STRINGZ "a\nb"`, "t.asm")
	tokens := l.TokenizeAll()
	var str Token
	for _, tok := range tokens {
		if tok.Type == TokenString {
			str = tok
		}
	}
	if str.Literal != `a\nb` {
		t.Errorf("string literal = %q, want literal backslash preserved", str.Literal)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer(`.STRINGZ "unterminated`, "t.asm")
	l.TokenizeAll()
	if len(l.Errors()) == 0 {
		t.Error("expected a lexical error for unterminated string")
	}
}

func TestLexerNegativeImmediate(t *testing.T) {
	l := NewLexer("#-3", "t.asm")
	tok := l.NextToken()
	if tok.Type != TokenWord || tok.Literal != "#-3" {
		t.Errorf("token = %+v, want Word #-3", tok)
	}
}
