package optimizer

import (
	"testing"

	"github.com/chazu/tapeworm/ir"
)

// tree builds an unoptimized tree from source text, one node per
// instruction character. Brackets must balance.
func tree(t *testing.T, src string) []ir.Node {
	t.Helper()
	stack := [][]ir.Node{nil}
	for _, ch := range src {
		top := len(stack) - 1
		switch ch {
		case '+':
			stack[top] = append(stack[top], ir.IncVal{Amount: 1})
		case '-':
			stack[top] = append(stack[top], ir.DecVal{Amount: 1})
		case '>':
			stack[top] = append(stack[top], ir.IncPtr{Amount: 1})
		case '<':
			stack[top] = append(stack[top], ir.DecPtr{Amount: 1})
		case '.':
			stack[top] = append(stack[top], ir.Output{})
		case ',':
			stack[top] = append(stack[top], ir.Input{})
		case '[':
			stack = append(stack, []ir.Node{})
		case ']':
			if top == 0 {
				t.Fatalf("unbalanced source %q", src)
			}
			body := stack[top]
			stack = stack[:top]
			stack[top-1] = append(stack[top-1], ir.Loop{Body: body})
		}
	}
	if len(stack) != 1 {
		t.Fatalf("unbalanced source %q", src)
	}
	return stack[0]
}

func assertTree(t *testing.T, got, want []ir.Node) {
	t.Helper()
	if !ir.EqualSeq(got, want) {
		t.Errorf("got  %s\nwant %s", ir.SeqString(got), ir.SeqString(want))
	}
}
