// Package ir defines the expression tree produced by the parser, rewritten
// by the optimizer and consumed by the bytecode lowering and text backends.
//
// The node set is closed: Node carries an unexported marker method, so the
// only implementations are the variants declared in this file. Trees are
// values. A Loop owns its body slice exclusively and passes always build new
// slices instead of editing the ones they were given.
package ir

// Node is the interface implemented by every expression tree node.
type Node interface {
	Kind() Kind
	String() string
	node() // marker method
}

// ---------------------------------------------------------------------------
// Cell value nodes
// ---------------------------------------------------------------------------

// IncVal adds Amount to the current cell, wrapping at 256.
type IncVal struct{ Amount uint8 }

// DecVal subtracts Amount from the current cell, wrapping at 256.
type DecVal struct{ Amount uint8 }

// MulVal adds current*Amount to the cell at pointer+Offset. Both the
// multiplication and the addition wrap at 256. Offset may be negative.
type MulVal struct {
	Offset int
	Amount uint8
}

// Clear sets the current cell to zero.
type Clear struct{}

// ---------------------------------------------------------------------------
// Pointer nodes
// ---------------------------------------------------------------------------

// IncPtr moves the pointer Amount cells to the right.
type IncPtr struct{ Amount uint }

// DecPtr moves the pointer Amount cells to the left.
type DecPtr struct{ Amount uint }

// ---------------------------------------------------------------------------
// Control and I/O nodes
// ---------------------------------------------------------------------------

// Loop repeats Body while the current cell is nonzero.
type Loop struct{ Body []Node }

// Output emits the current cell as a single byte.
type Output struct{}

// Input reads a byte into the current cell. It is recognized by every stage
// but has no execution semantics; the VM and the backends reject it.
type Input struct{}

func (IncVal) node() {}
func (DecVal) node() {}
func (IncPtr) node() {}
func (DecPtr) node() {}
func (MulVal) node() {}
func (Clear) node()  {}
func (Loop) node()   {}
func (Output) node() {}
func (Input) node()  {}

func (IncVal) Kind() Kind { return KindIncVal }
func (DecVal) Kind() Kind { return KindDecVal }
func (IncPtr) Kind() Kind { return KindIncPtr }
func (DecPtr) Kind() Kind { return KindDecPtr }
func (MulVal) Kind() Kind { return KindMulVal }
func (Clear) Kind() Kind  { return KindClear }
func (Loop) Kind() Kind   { return KindLoop }
func (Output) Kind() Kind { return KindOutput }
func (Input) Kind() Kind  { return KindInput }

// Clone returns a deep copy of nodes. Leaves are values already, so only
// loop bodies need fresh backing arrays.
func Clone(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if l, ok := n.(Loop); ok {
			out[i] = Loop{Body: Clone(l.Body)}
			continue
		}
		out[i] = n
	}
	return out
}

// Count returns the number of nodes in the tree, loop bodies included.
func Count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total++
		if l, ok := n.(Loop); ok {
			total += Count(l.Body)
		}
	}
	return total
}

// Depth returns the deepest loop nesting level. A tree without loops has
// depth 0.
func Depth(nodes []Node) int {
	deepest := 0
	for _, n := range nodes {
		if l, ok := n.(Loop); ok {
			if d := 1 + Depth(l.Body); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}
