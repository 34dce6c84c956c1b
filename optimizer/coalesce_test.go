package optimizer

import (
	"testing"

	"github.com/chazu/tapeworm/ir"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []ir.Node
	}{
		{"empty", "", nil},
		{"run of increments", "++++", []ir.Node{ir.IncVal{Amount: 4}}},
		{"run of moves", ">>><", []ir.Node{ir.IncPtr{Amount: 2}}},
		{"larger side wins", "++---", []ir.Node{ir.DecVal{Amount: 1}}},
		{"net zero", "+-", nil},
		{"pointer net zero", "<<>>", nil},
		{"families do not mix", "+>-", []ir.Node{
			ir.IncVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.DecVal{Amount: 1},
		}},
		{"cascading cancel", "+><-", nil},
		{"cascade then merge", "++><+", []ir.Node{ir.IncVal{Amount: 3}}},
		{"output separates runs", "+.+", []ir.Node{
			ir.IncVal{Amount: 1}, ir.Output{}, ir.IncVal{Amount: 1},
		}},
		{"loop separates runs", "+[-]+", []ir.Node{
			ir.IncVal{Amount: 1},
			ir.Loop{Body: []ir.Node{ir.DecVal{Amount: 1}}},
			ir.IncVal{Amount: 1},
		}},
		{"loop body coalesced", "[--->>]", []ir.Node{
			ir.Loop{Body: []ir.Node{ir.DecVal{Amount: 3}, ir.IncPtr{Amount: 2}}},
		}},
		{"empty loop kept", "[+-]", []ir.Node{ir.Loop{}}},
		{"input kept", ",+,", []ir.Node{ir.Input{}, ir.IncVal{Amount: 1}, ir.Input{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertTree(t, Coalesce(tree(t, tc.src)), tc.want)
		})
	}
}

func TestCoalesceWraps(t *testing.T) {
	got := Coalesce([]ir.Node{ir.IncVal{Amount: 200}, ir.IncVal{Amount: 100}})
	assertTree(t, got, []ir.Node{ir.IncVal{Amount: 44}})

	got = Coalesce([]ir.Node{ir.DecVal{Amount: 128}, ir.DecVal{Amount: 128}})
	assertTree(t, got, nil)
}

func TestCoalesceDropsZeroAmounts(t *testing.T) {
	got := Coalesce([]ir.Node{
		ir.IncVal{Amount: 0},
		ir.IncPtr{Amount: 0},
		ir.Output{},
		ir.DecPtr{Amount: 0},
	})
	assertTree(t, got, []ir.Node{ir.Output{}})
}

func TestCoalescePreservesFusedNodes(t *testing.T) {
	in := []ir.Node{
		ir.IncVal{Amount: 1},
		ir.MulVal{Offset: 1, Amount: 2},
		ir.Clear{},
		ir.IncVal{Amount: 1},
	}
	assertTree(t, Coalesce(in), in)
}

func TestCoalesceIdempotent(t *testing.T) {
	sources := []string{
		"++++",
		"+>-<-",
		"++[->+<]>>.<<[-]",
		"[[+-]>[<]>>]",
		"+++++[>+++++[>++<-]<-]>>.",
		",[.,]",
		"><><+-+-[]",
	}
	for _, src := range sources {
		once := Coalesce(tree(t, src))
		twice := Coalesce(once)
		if !ir.EqualSeq(once, twice) {
			t.Errorf("%q: Coalesce not idempotent:\nonce  %s\ntwice %s",
				src, ir.SeqString(once), ir.SeqString(twice))
		}
	}
}

func TestCoalesceDoesNotMutateInput(t *testing.T) {
	in := tree(t, "++[-->>]")
	snapshot := ir.Clone(in)
	Coalesce(in)
	assertTree(t, in, snapshot)
}
