package optimizer

import (
	"fmt"

	"github.com/chazu/tapeworm/ir"
)

// Coalesce merges adjacent nodes of the same family. IncVal and DecVal form
// one family, IncPtr and DecPtr the other. Same-direction amounts add
// (value amounts wrap at 256), opposite directions subtract and keep the
// variant of the larger side, and a net of zero removes the node entirely.
// Zero-amount leaves are dropped. Loop bodies are coalesced recursively but
// a loop is never merged with its neighbours, and empty loops are kept.
//
// The output is built as a stack, so cancellations cascade: in "+><-" the
// pointer moves cancel and then the two value changes cancel. Coalesce is
// idempotent.
func Coalesce(nodes []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(nodes))
	for _, n := range nodes {
		switch x := n.(type) {
		case ir.Loop:
			out = append(out, ir.Loop{Body: Coalesce(x.Body)})
		case ir.IncVal, ir.DecVal, ir.IncPtr, ir.DecPtr:
			out = push(out, n)
		case ir.MulVal, ir.Clear, ir.Output, ir.Input:
			out = append(out, n)
		default:
			panic(fmt.Sprintf("optimizer: unknown node type %T", n))
		}
	}
	return out
}

// delta is a leaf change as a direction and a magnitude.
type delta struct {
	ptr  bool // pointer family rather than value family
	neg  bool // DecVal or DecPtr
	size uint
}

func deltaOf(n ir.Node) (delta, bool) {
	switch x := n.(type) {
	case ir.IncVal:
		return delta{size: uint(x.Amount)}, true
	case ir.DecVal:
		return delta{neg: true, size: uint(x.Amount)}, true
	case ir.IncPtr:
		return delta{ptr: true, size: x.Amount}, true
	case ir.DecPtr:
		return delta{ptr: true, neg: true, size: x.Amount}, true
	}
	return delta{}, false
}

// node converts d back into a leaf. It returns nil when the change is a
// no-op, including value changes that wrap to zero.
func (d delta) node() ir.Node {
	if d.ptr {
		switch {
		case d.size == 0:
			return nil
		case d.neg:
			return ir.DecPtr{Amount: d.size}
		default:
			return ir.IncPtr{Amount: d.size}
		}
	}
	amount := uint8(d.size)
	switch {
	case amount == 0:
		return nil
	case d.neg:
		return ir.DecVal{Amount: amount}
	default:
		return ir.IncVal{Amount: amount}
	}
}

func combine(a, b delta) delta {
	switch {
	case a.neg == b.neg:
		return delta{ptr: a.ptr, neg: a.neg, size: a.size + b.size}
	case a.size >= b.size:
		return delta{ptr: a.ptr, neg: a.neg, size: a.size - b.size}
	default:
		return delta{ptr: a.ptr, neg: b.neg, size: b.size - a.size}
	}
}

// push appends leaf to out, merging it into the top of out when both belong
// to the same family.
func push(out []ir.Node, leaf ir.Node) []ir.Node {
	d, _ := deltaOf(leaf)
	if len(out) > 0 {
		if top, ok := deltaOf(out[len(out)-1]); ok && top.ptr == d.ptr {
			out = out[:len(out)-1]
			d = combine(top, d)
		}
	}
	if n := d.node(); n != nil {
		out = append(out, n)
	}
	return out
}
