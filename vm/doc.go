// Package vm lowers optimized expression trees to a flat bytecode program
// and executes it on a tape machine.
//
// # Bytecode
//
// A Program is a sequence of fixed-shape Instructions. Leaves of the tree
// map one-to-one onto instructions; every loop becomes a START_LOOP and an
// END_LOOP bracketing its body. Jump targets are resolved during lowering
// and never change afterwards:
//
//   - START_LOOP jumps to the instruction after its END_LOOP when the
//     current cell is zero.
//   - END_LOOP jumps to the first instruction of the body when the current
//     cell is nonzero.
//
// Lowering is structurally recursive. A loop body is lowered before the
// opening instruction is emitted, so its length is known and no
// backpatching is needed.
//
// # Machine
//
// A Machine owns a zeroed tape (30,000 cells by default) and a pointer.
// Cell arithmetic wraps at 8 bits. Pointer motion and MUL_VAL targets are
// bounds-checked: leaving the tape stops the run with an *AddressFault.
// INPUT is recognized but has no execution semantics and stops the run
// with ErrUnsupported. A run ends normally when the program counter moves
// past the last instruction.
//
// # Images
//
// Programs can be saved as images: the magic "TWBC", a format version and
// a CBOR payload. Decoded images are validated before use.
package vm
