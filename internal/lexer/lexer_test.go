package lexer

import (
	"testing"

	"github.com/jlvm/jlvm/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestLexesAssignmentAndArithmetic(t *testing.T) {
	toks := collect("x = 1 + 2.5\n")
	want := []token.TokenType{token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.FLOAT, token.NEWLINE, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: expected %v, got %v (%q)", i, tt, toks[i].Type, toks[i].Lexeme)
		}
	}
}

func TestLexesKeywordsAndComparisons(t *testing.T) {
	toks := collect("if x <= 2\n    true\nend")
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	want := []token.TokenType{token.IF, token.IDENT, token.LTE, token.INT, token.NEWLINE, token.TRUE, token.NEWLINE, token.END, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(types), toks)
	}
	for i, tt := range want {
		if types[i] != tt {
			t.Fatalf("token %d: expected %v, got %v", i, tt, types[i])
		}
	}
}

func TestLexesStringEscapesAndComment(t *testing.T) {
	toks := collect(`"a\nb" # trailing comment` + "\n")
	if toks[0].Type != token.STRING || toks[0].Literal != "a\nb" {
		t.Fatalf("unexpected string token: %+v", toks[0])
	}
	if toks[1].Type != token.NEWLINE {
		t.Fatalf("expected comment to be skipped through to newline, got %+v", toks[1])
	}
}

func TestLexesBroadcastDotCall(t *testing.T) {
	toks := collect("f.(x)")
	want := []token.TokenType{token.IDENT, token.BROADCAST_DOT, token.LPAREN, token.IDENT, token.RPAREN, token.EOF}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: expected %v, got %v", i, tt, toks[i].Type)
		}
	}
}
