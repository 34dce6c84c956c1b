package compiler

import (
	"testing"
)

func TestLexerInstructionTokens(t *testing.T) {
	input := `+-><[].,`
	expected := []TokenType{
		TokenIncVal, TokenDecVal, TokenIncPtr, TokenDecPtr,
		TokenLoopStart, TokenLoopEnd, TokenOutput, TokenInput,
		TokenEOF,
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp)
		}
		if exp != TokenEOF && tok.Literal != string(input[i]) {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, input[i])
		}
	}
}

func TestLexerSkipsIgnorable(t *testing.T) {
	tokens := Tokenize("add one: + \n then print it. ")
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2: %v", len(tokens), tokens)
	}
	if tokens[0].Type != TokenIncVal || tokens[1].Type != TokenOutput {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := Tokenize("+\n ab>\n\n é[")
	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 5, Line: 2, Column: 4},
		{Offset: 11, Line: 4, Column: 3},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Pos != w {
			t.Errorf("token[%d] pos = %+v, want %+v", i, tokens[i].Pos, w)
		}
	}
}

func TestLexerKeepIgnorable(t *testing.T) {
	l := NewLexer("ab+ c").KeepIgnorable()
	want := []struct {
		typ TokenType
		lit string
	}{
		{TokenIgnore, "ab"},
		{TokenIncVal, "+"},
		{TokenIgnore, " c"},
		{TokenEOF, ""},
		{TokenEOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Literal != w.lit {
			t.Errorf("token[%d] = %v %q, want %v %q", i, tok.Type, tok.Literal, w.typ, w.lit)
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	if got := TokenLoopStart.String(); got != "[" {
		t.Errorf("String() = %q, want \"[\"", got)
	}
	if got := TokenType(99).String(); got != "Token(99)" {
		t.Errorf("String() = %q, want \"Token(99)\"", got)
	}
}
