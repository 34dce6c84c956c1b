package optimizer

import (
	"testing"

	"github.com/chazu/tapeworm/ir"
)

func fused(t *testing.T, src string) []ir.Node {
	t.Helper()
	return Fuse(Coalesce(tree(t, src)))
}

func TestFuseCopyLoop(t *testing.T) {
	assertTree(t, fused(t, "[->+<]"), []ir.Node{
		ir.MulVal{Offset: 1, Amount: 1},
		ir.Clear{},
	})
}

func TestFuseMultipleTargets(t *testing.T) {
	assertTree(t, fused(t, "[->>+>+<<<]"), []ir.Node{
		ir.MulVal{Offset: 2, Amount: 1},
		ir.MulVal{Offset: 3, Amount: 1},
		ir.Clear{},
	})
}

func TestFuseScaleAndNegativeOffsets(t *testing.T) {
	assertTree(t, fused(t, "[<<+++>->-]"), []ir.Node{
		ir.MulVal{Offset: -2, Amount: 3},
		ir.MulVal{Offset: -1, Amount: 255},
		ir.Clear{},
	})
}

func TestFuseCounterDecrementAnywhereInBody(t *testing.T) {
	assertTree(t, fused(t, "[>++<-]"), []ir.Node{
		ir.MulVal{Offset: 1, Amount: 2},
		ir.Clear{},
	})
}

func TestFuseRejectsUnbalancedPointer(t *testing.T) {
	sources := []string{
		"[->>+>+<<]",
		"[->+]",
		"[-<+<]",
		"[->+>]",
	}
	for _, src := range sources {
		in := Coalesce(tree(t, src))
		assertTree(t, Fuse(in), in)
	}
}

func TestFuseRejectsSideEffects(t *testing.T) {
	tests := []struct {
		name string
		body []ir.Node
	}{
		{"output", []ir.Node{ir.DecVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.IncVal{Amount: 1}, ir.Output{}, ir.DecPtr{Amount: 1}}},
		{"input", []ir.Node{ir.DecVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.Input{}, ir.DecPtr{Amount: 1}}},
		{"clear", []ir.Node{ir.DecVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.IncVal{Amount: 1}, ir.Clear{}, ir.DecPtr{Amount: 1}}},
		{"nested loop", []ir.Node{ir.DecVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.IncVal{Amount: 1}, ir.Loop{Body: []ir.Node{ir.IncPtr{Amount: 1}}}, ir.DecPtr{Amount: 1}}},
		{"mulval", []ir.Node{ir.DecVal{Amount: 1}, ir.MulVal{Offset: 2, Amount: 1}, ir.IncPtr{Amount: 1}, ir.IncVal{Amount: 1}, ir.DecPtr{Amount: 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := []ir.Node{ir.Loop{Body: tc.body}}
			got := Fuse(in)
			if len(got) != 1 || got[0].Kind() != ir.KindLoop {
				t.Fatalf("loop with %s was fused: %s", tc.name, ir.SeqString(got))
			}
		})
	}
}

func TestFuseRejectsCounterShapes(t *testing.T) {
	sources := []string{
		"[-->+<]",  // counter decremented by 2
		"[+>+<]",   // counter incremented
		"[->+<-]",  // counter changed twice
		"[>+<]",    // counter never changed
		"[-]",      // no other cell changed
		"[->+<+-]", // coalesces to [->+<] and fuses, checked below
	}
	for _, src := range sources[:5] {
		in := Coalesce(tree(t, src))
		got := Fuse(in)
		if len(got) != 1 || got[0].Kind() != ir.KindLoop {
			t.Errorf("%q fused to %s", src, ir.SeqString(got))
		}
	}
	assertTree(t, fused(t, sources[5]), []ir.Node{
		ir.MulVal{Offset: 1, Amount: 1},
		ir.Clear{},
	})
}

func TestFuseRecursesIntoKeptLoops(t *testing.T) {
	assertTree(t, fused(t, "[>[->+<]<-.]"), []ir.Node{
		ir.Loop{Body: []ir.Node{
			ir.IncPtr{Amount: 1},
			ir.MulVal{Offset: 1, Amount: 1},
			ir.Clear{},
			ir.DecPtr{Amount: 1},
			ir.DecVal{Amount: 1},
			ir.Output{},
		}},
	})
}
