package optimizer

import (
	"testing"

	"github.com/chazu/tapeworm/ir"
)

func TestZeroLoop(t *testing.T) {
	tests := []struct {
		src  string
		want []ir.Node
	}{
		{"[-]", []ir.Node{ir.Clear{}}},
		{"[+]", []ir.Node{ir.Clear{}}},
		{"+[-].", []ir.Node{ir.IncVal{Amount: 1}, ir.Clear{}, ir.Output{}}},
		{"[--]", []ir.Node{ir.Loop{Body: []ir.Node{ir.DecVal{Amount: 1}, ir.DecVal{Amount: 1}}}}},
		{"[>[-]<-]", []ir.Node{ir.Loop{Body: []ir.Node{
			ir.IncPtr{Amount: 1}, ir.Clear{}, ir.DecPtr{Amount: 1}, ir.DecVal{Amount: 1},
		}}}},
		{"[[-]]", []ir.Node{ir.Loop{Body: []ir.Node{ir.Clear{}}}}},
		{"[]", []ir.Node{ir.Loop{}}},
	}
	for _, tc := range tests {
		assertTree(t, ZeroLoop(tree(t, tc.src)), tc.want)
	}
}

func TestZeroLoopIgnoresLargerAmounts(t *testing.T) {
	in := []ir.Node{ir.Loop{Body: []ir.Node{ir.DecVal{Amount: 2}}}}
	assertTree(t, ZeroLoop(in), in)
}

func TestZeroLoopIdempotent(t *testing.T) {
	for _, src := range []string{"[-]", "[[-]]", "[[[+]]>]", "+[-[-]]", ",[.[-],]"} {
		once := ZeroLoop(tree(t, src))
		twice := ZeroLoop(once)
		if !ir.EqualSeq(once, twice) {
			t.Errorf("%q: ZeroLoop not idempotent:\nonce  %s\ntwice %s",
				src, ir.SeqString(once), ir.SeqString(twice))
		}
	}
}
