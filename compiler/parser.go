package compiler

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/tapeworm/ir"
)

// ---------------------------------------------------------------------------
// Parser: bracket matching with an explicit stack
// ---------------------------------------------------------------------------

// SyntaxError reports an unmatched loop bracket.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// frame is an open loop awaiting its closing bracket.
type frame struct {
	open Position
	body []ir.Node
}

// Parser builds an unoptimized tree from a token stream.
type Parser struct {
	stack  []frame
	errors []error
}

// NewParser creates a parser with an empty top-level sequence.
func NewParser() *Parser {
	return &Parser{stack: []frame{{}}}
}

func (p *Parser) errorf(pos Position, format string, args ...any) {
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) emit(n ir.Node) {
	top := &p.stack[len(p.stack)-1]
	top.body = append(top.body, n)
}

// Feed consumes one token.
func (p *Parser) Feed(tok Token) {
	switch tok.Type {
	case TokenIncVal:
		p.emit(ir.IncVal{Amount: 1})
	case TokenDecVal:
		p.emit(ir.DecVal{Amount: 1})
	case TokenIncPtr:
		p.emit(ir.IncPtr{Amount: 1})
	case TokenDecPtr:
		p.emit(ir.DecPtr{Amount: 1})
	case TokenOutput:
		p.emit(ir.Output{})
	case TokenInput:
		p.emit(ir.Input{})
	case TokenLoopStart:
		p.stack = append(p.stack, frame{open: tok.Pos, body: []ir.Node{}})
	case TokenLoopEnd:
		if len(p.stack) == 1 {
			p.errorf(tok.Pos, "unmatched ']'")
			return
		}
		closed := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		p.emit(ir.Loop{Body: closed.body})
	case TokenIgnore, TokenEOF:
	default:
		panic(fmt.Sprintf("compiler: unknown token type %v", tok.Type))
	}
}

// Finish returns the parsed tree. Every unmatched bracket is reported, in
// source order, as a *SyntaxError joined into a single error.
func (p *Parser) Finish() ([]ir.Node, error) {
	for _, f := range p.stack[1:] {
		p.errorf(f.open, "unmatched '['")
	}
	if len(p.errors) > 0 {
		sortErrors(p.errors)
		return nil, errors.Join(p.errors...)
	}
	return p.stack[0].body, nil
}

// sortErrors orders syntax errors by source offset. Unmatched ']' errors
// are recorded while parsing and unmatched '[' only at the end.
func sortErrors(errs []error) {
	offset := func(err error) int {
		var se *SyntaxError
		if errors.As(err, &se) {
			return se.Pos.Offset
		}
		return 0
	}
	slices.SortStableFunc(errs, func(a, b error) int {
		return cmp.Compare(offset(a), offset(b))
	})
}

// Parse tokenizes and parses src without optimizing it.
func Parse(src string) ([]ir.Node, error) {
	p := NewParser()
	l := NewLexer(src)
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		p.Feed(tok)
	}
	return p.Finish()
}

// SyntaxErrors unpacks the individual *SyntaxError values from an error
// returned by Parse or Compile.
func SyntaxErrors(err error) []*SyntaxError {
	if err == nil {
		return nil
	}
	var out []*SyntaxError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, SyntaxErrors(e)...)
		}
		return out
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		out = append(out, se)
	}
	return out
}
