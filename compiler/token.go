package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the tape language
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota

	// Cell and pointer changes
	TokenIncVal // +
	TokenDecVal // -
	TokenIncPtr // >
	TokenDecPtr // <

	// Control flow
	TokenLoopStart // [
	TokenLoopEnd   // ]

	// I/O
	TokenOutput // .
	TokenInput  // ,

	// Any other character. The parser never sees these unless the lexer
	// is asked to keep them.
	TokenIgnore
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenIncVal:    "+",
	TokenDecVal:    "-",
	TokenIncPtr:    ">",
	TokenDecPtr:    "<",
	TokenLoopStart: "[",
	TokenLoopEnd:   "]",
	TokenOutput:    ".",
	TokenInput:     ",",
	TokenIgnore:    "IGNORE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// classify maps a source character to its token type.
func classify(ch rune) TokenType {
	switch ch {
	case '+':
		return TokenIncVal
	case '-':
		return TokenDecVal
	case '>':
		return TokenIncPtr
	case '<':
		return TokenDecPtr
	case '[':
		return TokenLoopStart
	case ']':
		return TokenLoopEnd
	case '.':
		return TokenOutput
	case ',':
		return TokenInput
	}
	return TokenIgnore
}

// Position identifies a location in source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single classified source character.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%s", t.Type, t.Pos)
}
