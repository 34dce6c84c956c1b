package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when the machine reaches an INPUT
	// instruction.
	ErrUnsupported = errors.New("input is not supported")

	// ErrStepLimit is returned when a configured step limit runs out.
	ErrStepLimit = errors.New("step limit exceeded")
)

// AddressFault reports pointer motion or a MUL_VAL target outside the tape.
// The machine state is left as it was before the faulting instruction.
type AddressFault struct {
	PC       int
	Op       Opcode
	Pointer  uint
	Offset   int // requested displacement from Pointer
	TapeSize int
}

func (f *AddressFault) Error() string {
	return fmt.Sprintf("address fault at %04d (%s): pointer %d%+d is outside the tape [0, %d)",
		f.PC, f.Op, f.Pointer, f.Offset, f.TapeSize)
}
