package vm

import "fmt"

// Opcode identifies a bytecode instruction.
type Opcode byte

const (
	// Cell values
	OpIncVal Opcode = 0x01 // tape[p] += Amount
	OpDecVal Opcode = 0x02 // tape[p] -= Amount
	OpMulVal Opcode = 0x03 // tape[p+Arg] += tape[p] * Amount
	OpClear  Opcode = 0x04 // tape[p] = 0

	// Pointer
	OpIncPtr Opcode = 0x10 // p += Arg
	OpDecPtr Opcode = 0x11 // p -= Arg

	// Control flow
	OpStartLoop Opcode = 0x20 // if tape[p] == 0 { pc = Arg }
	OpEndLoop   Opcode = 0x21 // if tape[p] != 0 { pc = Arg }

	// I/O
	OpOutput Opcode = 0x30 // write tape[p]
	OpInput  Opcode = 0x31 // unsupported
)

// Operands describes which Instruction fields an opcode uses.
type Operands int

const (
	OperandsNone         Operands = iota
	OperandsAmount                // Amount
	OperandsCount                 // Arg, non-negative
	OperandsOffsetAmount          // Arg (signed offset) and Amount
	OperandsTarget                // Arg, a jump target
)

// OpcodeInfo provides metadata about each opcode for the disassembler and
// image validation.
type OpcodeInfo struct {
	Name     string
	Operands Operands
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpIncVal:    {"INC_VAL", OperandsAmount},
	OpDecVal:    {"DEC_VAL", OperandsAmount},
	OpMulVal:    {"MUL_VAL", OperandsOffsetAmount},
	OpClear:     {"CLEAR", OperandsNone},
	OpIncPtr:    {"INC_PTR", OperandsCount},
	OpDecPtr:    {"DEC_PTR", OperandsCount},
	OpStartLoop: {"START_LOOP", OperandsTarget},
	OpEndLoop:   {"END_LOOP", OperandsTarget},
	OpOutput:    {"OUTPUT", OperandsNone},
	OpInput:     {"INPUT", OperandsNone},
}

// GetOpcodeInfo returns metadata for an opcode. Unknown opcodes get a name
// of the form "UNKNOWN(0xNN)".
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsJump reports whether op carries a jump target.
func (op Opcode) IsJump() bool {
	return op == OpStartLoop || op == OpEndLoop
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	return []Opcode{
		OpIncVal, OpDecVal, OpMulVal, OpClear,
		OpIncPtr, OpDecPtr,
		OpStartLoop, OpEndLoop,
		OpOutput, OpInput,
	}
}
