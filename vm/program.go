package vm

import (
	"fmt"

	"github.com/chazu/tapeworm/ir"
)

// Instruction is a single bytecode instruction. Which fields are meaningful
// depends on Op; see OpcodeInfo.Operands.
type Instruction struct {
	Op     Opcode
	Amount uint8
	Arg    int
}

func (in Instruction) String() string {
	switch GetOpcodeInfo(in.Op).Operands {
	case OperandsAmount:
		return fmt.Sprintf("%s %d", in.Op, in.Amount)
	case OperandsCount:
		return fmt.Sprintf("%s %d", in.Op, in.Arg)
	case OperandsOffsetAmount:
		return fmt.Sprintf("%s %+d, %d", in.Op, in.Arg, in.Amount)
	case OperandsTarget:
		return fmt.Sprintf("%s -> %04d", in.Op, in.Arg)
	}
	return in.Op.String()
}

// Program is an immutable, resolved instruction sequence.
type Program struct {
	code []Instruction
}

// NewProgram wraps a copy of code. It does not check jump pairing; call
// Validate for code that did not come from Lower.
func NewProgram(code []Instruction) *Program {
	return &Program{code: append([]Instruction(nil), code...)}
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.code) }

// At returns the instruction at address i.
func (p *Program) At(i int) Instruction { return p.code[i] }

// Code returns a copy of the instruction sequence.
func (p *Program) Code() []Instruction {
	return append([]Instruction(nil), p.code...)
}

// ---------------------------------------------------------------------------
// Lowering
// ---------------------------------------------------------------------------

// Lower flattens a tree into a program. It cannot fail on a well-formed
// tree; an unknown node type panics.
func Lower(nodes []ir.Node) *Program {
	return &Program{code: lower(0, nodes)}
}

// lower returns the instructions for nodes, assuming the first one will be
// placed at address base.
func lower(base int, nodes []ir.Node) []Instruction {
	var code []Instruction
	for _, n := range nodes {
		addr := base + len(code)
		switch x := n.(type) {
		case ir.IncVal:
			code = append(code, Instruction{Op: OpIncVal, Amount: x.Amount})
		case ir.DecVal:
			code = append(code, Instruction{Op: OpDecVal, Amount: x.Amount})
		case ir.IncPtr:
			code = append(code, Instruction{Op: OpIncPtr, Arg: int(x.Amount)})
		case ir.DecPtr:
			code = append(code, Instruction{Op: OpDecPtr, Arg: int(x.Amount)})
		case ir.MulVal:
			code = append(code, Instruction{Op: OpMulVal, Arg: x.Offset, Amount: x.Amount})
		case ir.Clear:
			code = append(code, Instruction{Op: OpClear})
		case ir.Output:
			code = append(code, Instruction{Op: OpOutput})
		case ir.Input:
			code = append(code, Instruction{Op: OpInput})
		case ir.Loop:
			body := lower(addr+1, x.Body)
			code = append(code, Instruction{Op: OpStartLoop, Arg: addr + 2 + len(body)})
			code = append(code, body...)
			code = append(code, Instruction{Op: OpEndLoop, Arg: addr + 1})
		default:
			panic(fmt.Sprintf("vm: unknown node type %T", n))
		}
	}
	return code
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks that every opcode is defined, pointer counts are
// non-negative and each START_LOOP/END_LOOP pair targets the instruction
// just past its partner.
func (p *Program) Validate() error {
	var open []int
	for addr, in := range p.code {
		if !in.Op.Valid() {
			return fmt.Errorf("address %04d: unknown opcode 0x%02X", addr, byte(in.Op))
		}
		switch in.Op {
		case OpIncPtr, OpDecPtr:
			if in.Arg < 0 {
				return fmt.Errorf("address %04d: negative pointer count %d", addr, in.Arg)
			}
		case OpStartLoop:
			open = append(open, addr)
		case OpEndLoop:
			if len(open) == 0 {
				return fmt.Errorf("address %04d: END_LOOP without START_LOOP", addr)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if got := p.code[start].Arg; got != addr+1 {
				return fmt.Errorf("address %04d: START_LOOP target %04d, want %04d", start, got, addr+1)
			}
			if in.Arg != start+1 {
				return fmt.Errorf("address %04d: END_LOOP target %04d, want %04d", addr, in.Arg, start+1)
			}
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("address %04d: START_LOOP without END_LOOP", open[len(open)-1])
	}
	return nil
}
