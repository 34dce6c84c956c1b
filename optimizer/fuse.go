package optimizer

import (
	"fmt"

	"github.com/chazu/tapeworm/ir"
)

// Fuse replaces copy/scale loops with straight-line multiply-adds.
//
// A loop fuses when its body
//   - contains only IncVal, DecVal, IncPtr and DecPtr,
//   - leaves the pointer where it started,
//   - changes the counter cell (offset 0) exactly once, by DecVal(1), and
//   - changes at least one other cell.
//
// Such a loop is replaced by one MulVal(offset, amount) per change at a
// nonzero offset, in body order, followed by Clear. IncVal(a) contributes
// amount a and DecVal(a) contributes 256-a. Loops that do not qualify are
// kept and their bodies fused recursively.
func Fuse(nodes []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(nodes))
	for _, n := range nodes {
		switch x := n.(type) {
		case ir.Loop:
			ctx := scanLoop(x.Body)
			if !ctx.fusible() {
				out = append(out, ir.Loop{Body: Fuse(x.Body)})
				continue
			}
			for _, c := range ctx.changes {
				out = append(out, ir.MulVal{Offset: c.offset, Amount: c.amount})
			}
			out = append(out, ir.Clear{})
		case ir.IncVal, ir.DecVal, ir.IncPtr, ir.DecPtr,
			ir.MulVal, ir.Clear, ir.Output, ir.Input:
			out = append(out, n)
		default:
			panic(fmt.Sprintf("optimizer: unknown node type %T", n))
		}
	}
	return out
}

type cellChange struct {
	offset int
	amount uint8
}

// fuseContext accumulates what a single walk over a loop body learns.
type fuseContext struct {
	sideEffects   int
	offset        int
	changes       []cellChange // value changes at nonzero offsets
	counterWrites int          // value changes at offset 0
	counterDecOne bool         // the last counter change was DecVal(1)
}

func scanLoop(body []ir.Node) fuseContext {
	var ctx fuseContext
	for _, n := range body {
		ctx.visit(n)
	}
	return ctx
}

func (c *fuseContext) visit(n ir.Node) {
	switch x := n.(type) {
	case ir.IncVal:
		if c.offset == 0 {
			c.counterWrites++
			c.counterDecOne = false
			return
		}
		c.changes = append(c.changes, cellChange{offset: c.offset, amount: x.Amount})
	case ir.DecVal:
		if c.offset == 0 {
			c.counterWrites++
			c.counterDecOne = x.Amount == 1
			return
		}
		c.changes = append(c.changes, cellChange{offset: c.offset, amount: -x.Amount})
	case ir.IncPtr:
		c.offset += int(x.Amount)
	case ir.DecPtr:
		c.offset -= int(x.Amount)
	case ir.Output, ir.Input, ir.Clear, ir.Loop, ir.MulVal:
		c.sideEffects++
	default:
		panic(fmt.Sprintf("optimizer: unknown node type %T", n))
	}
}

func (c *fuseContext) fusible() bool {
	return c.sideEffects == 0 &&
		c.offset == 0 &&
		c.counterWrites == 1 && c.counterDecOne &&
		len(c.changes) > 0
}
