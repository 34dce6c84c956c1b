package vm

import (
	"fmt"
	"io"

	"github.com/chazu/tapeworm/ir"
)

// DefaultTapeSize is the conventional tape length.
const DefaultTapeSize = 30000

// Option configures a Machine.
type Option func(*Machine)

// WithOutput sets the writer that receives OUTPUT bytes. The default
// discards them.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) { m.out = w }
}

// WithTapeSize sets the number of cells. Sizes below 1 select
// DefaultTapeSize.
func WithTapeSize(n int) Option {
	return func(m *Machine) {
		if n < 1 {
			n = DefaultTapeSize
		}
		m.tape = make([]byte, n)
	}
}

// WithStepLimit stops the run with ErrStepLimit after n instructions.
// Zero means no limit.
func WithStepLimit(n uint64) Option {
	return func(m *Machine) { m.stepLimit = n }
}

// WithTrace writes one line per executed instruction to w.
func WithTrace(w io.Writer) Option {
	return func(m *Machine) { m.trace = w }
}

// Machine executes one program against its own tape. A Machine is
// single-use and not safe for concurrent use.
type Machine struct {
	code      []Instruction
	pc        int
	ptr       uint
	tape      []byte
	steps     uint64
	stepLimit uint64

	out   io.Writer
	trace io.Writer
	buf   [1]byte
}

// NewMachine creates a machine with a zeroed tape, the pointer at cell 0
// and the program counter at address 0.
func NewMachine(prog *Program, opts ...Option) *Machine {
	m := &Machine{
		code: prog.Code(),
		out:  io.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tape == nil {
		m.tape = make([]byte, DefaultTapeSize)
	}
	if m.out == nil {
		m.out = io.Discard
	}
	return m
}

// Tape returns a copy of the tape.
func (m *Machine) Tape() []byte { return append([]byte(nil), m.tape...) }

// Pointer returns the current cell index.
func (m *Machine) Pointer() uint { return m.ptr }

// PC returns the address of the next instruction.
func (m *Machine) PC() int { return m.pc }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 { return m.steps }

// Done reports whether the program counter is past the last instruction.
func (m *Machine) Done() bool { return m.pc >= len(m.code) }

func (m *Machine) fault(in Instruction, offset int) error {
	return &AddressFault{
		PC:       m.pc,
		Op:       in.Op,
		Pointer:  m.ptr,
		Offset:   offset,
		TapeSize: len(m.tape),
	}
}

// Step executes one instruction. It returns false, with no error, when the
// program has already run to completion. On error the machine state is
// unchanged and the program counter still addresses the failing
// instruction.
func (m *Machine) Step() (bool, error) {
	if m.pc >= len(m.code) {
		return false, nil
	}
	if m.stepLimit > 0 && m.steps >= m.stepLimit {
		return false, fmt.Errorf("at %04d: %w (%d)", m.pc, ErrStepLimit, m.stepLimit)
	}

	in := m.code[m.pc]
	if m.trace != nil {
		fmt.Fprintf(m.trace, "%04d  %-20s ptr=%d cell=%d\n", m.pc, in, m.ptr, m.tape[m.ptr])
	}

	next := m.pc + 1
	switch in.Op {
	case OpIncVal:
		m.tape[m.ptr] += in.Amount
	case OpDecVal:
		m.tape[m.ptr] -= in.Amount
	case OpIncPtr:
		if uint(in.Arg) >= uint(len(m.tape))-m.ptr {
			return false, m.fault(in, in.Arg)
		}
		m.ptr += uint(in.Arg)
	case OpDecPtr:
		if uint(in.Arg) > m.ptr {
			return false, m.fault(in, -in.Arg)
		}
		m.ptr -= uint(in.Arg)
	case OpMulVal:
		target := int(m.ptr) + in.Arg
		if target < 0 || target >= len(m.tape) {
			return false, m.fault(in, in.Arg)
		}
		m.tape[target] += m.tape[m.ptr] * in.Amount
	case OpClear:
		m.tape[m.ptr] = 0
	case OpStartLoop:
		if m.tape[m.ptr] == 0 {
			next = in.Arg
		}
	case OpEndLoop:
		if m.tape[m.ptr] != 0 {
			next = in.Arg
		}
	case OpOutput:
		m.buf[0] = m.tape[m.ptr]
		if _, err := m.out.Write(m.buf[:]); err != nil {
			return false, fmt.Errorf("at %04d: output: %w", m.pc, err)
		}
	case OpInput:
		return false, fmt.Errorf("at %04d: %w", m.pc, ErrUnsupported)
	default:
		return false, fmt.Errorf("at %04d: unknown opcode 0x%02X", m.pc, byte(in.Op))
	}

	m.pc = next
	m.steps++
	return true, nil
}

// Run steps until the program counter moves past the last instruction or
// an instruction fails.
func (m *Machine) Run() error {
	for {
		ok, err := m.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// LowerAndRun lowers nodes and runs them on a fresh machine whose output
// goes to w.
func LowerAndRun(nodes []ir.Node, w io.Writer, opts ...Option) error {
	opts = append([]Option{WithOutput(w)}, opts...)
	return NewMachine(Lower(nodes), opts...).Run()
}
