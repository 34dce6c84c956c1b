package compiler

import "unicode/utf8"

// ---------------------------------------------------------------------------
// Lexer
// ---------------------------------------------------------------------------

// Lexer splits source text into tokens. Every character that is not one of
// the eight instructions is ignorable; by default NextToken skips them.
type Lexer struct {
	input      string
	pos        int // offset of the next unread character
	line       int
	col        int
	keepIgnore bool
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// KeepIgnorable makes NextToken return runs of ignorable characters as
// single TokenIgnore tokens instead of skipping them.
func (l *Lexer) KeepIgnorable() *Lexer {
	l.keepIgnore = true
	return l
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// advance consumes one rune and returns it with its type.
func (l *Lexer) advance() (rune, TokenType) {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, classify(r)
}

func (l *Lexer) peekType() TokenType {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return classify(r)
}

// NextToken returns the next token. At end of input it returns TokenEOF,
// repeatedly.
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.input) {
		pos := l.position()
		ch, typ := l.advance()
		if typ != TokenIgnore {
			return Token{Type: typ, Literal: string(ch), Pos: pos}
		}
		if !l.keepIgnore {
			continue
		}
		for l.pos < len(l.input) && l.peekType() == TokenIgnore {
			l.advance()
		}
		return Token{Type: TokenIgnore, Literal: l.input[pos.Offset:l.pos], Pos: pos}
	}
	return Token{Type: TokenEOF, Pos: l.position()}
}

// Tokenize returns every instruction token in input, without the final
// EOF token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
