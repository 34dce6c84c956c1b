package optimizer

import (
	"fmt"

	"github.com/chazu/tapeworm/ir"
)

// ZeroLoop replaces a loop whose body is exactly [DecVal(1)] or
// [IncVal(1)] with Clear. Either loop runs until the cell wraps to zero.
// Other loops are kept with their bodies reduced recursively. ZeroLoop is
// idempotent.
func ZeroLoop(nodes []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(nodes))
	for _, n := range nodes {
		switch x := n.(type) {
		case ir.Loop:
			if isZeroBody(x.Body) {
				out = append(out, ir.Clear{})
				continue
			}
			out = append(out, ir.Loop{Body: ZeroLoop(x.Body)})
		case ir.IncVal, ir.DecVal, ir.IncPtr, ir.DecPtr,
			ir.MulVal, ir.Clear, ir.Output, ir.Input:
			out = append(out, n)
		default:
			panic(fmt.Sprintf("optimizer: unknown node type %T", n))
		}
	}
	return out
}

func isZeroBody(body []ir.Node) bool {
	if len(body) != 1 {
		return false
	}
	switch x := body[0].(type) {
	case ir.DecVal:
		return x.Amount == 1
	case ir.IncVal:
		return x.Amount == 1
	}
	return false
}
