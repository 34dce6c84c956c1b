package vm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/tapeworm/ir"
)

func TestLowerLeaves(t *testing.T) {
	got := Lower([]ir.Node{
		ir.IncVal{Amount: 3},
		ir.DecVal{Amount: 2},
		ir.IncPtr{Amount: 4},
		ir.DecPtr{Amount: 1},
		ir.MulVal{Offset: -2, Amount: 7},
		ir.Clear{},
		ir.Output{},
		ir.Input{},
	}).Code()
	want := []Instruction{
		{Op: OpIncVal, Amount: 3},
		{Op: OpDecVal, Amount: 2},
		{Op: OpIncPtr, Arg: 4},
		{Op: OpDecPtr, Arg: 1},
		{Op: OpMulVal, Arg: -2, Amount: 7},
		{Op: OpClear},
		{Op: OpOutput},
		{Op: OpInput},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lower() mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerNestedLoops(t *testing.T) {
	// +[>[-]<-]
	got := Lower([]ir.Node{
		ir.IncVal{Amount: 1},
		ir.Loop{Body: []ir.Node{
			ir.IncPtr{Amount: 1},
			ir.Loop{Body: []ir.Node{ir.DecVal{Amount: 1}}},
			ir.DecPtr{Amount: 1},
			ir.DecVal{Amount: 1},
		}},
	}).Code()
	want := []Instruction{
		{Op: OpIncVal, Amount: 1},  // 0
		{Op: OpStartLoop, Arg: 9},  // 1
		{Op: OpIncPtr, Arg: 1},     // 2
		{Op: OpStartLoop, Arg: 6},  // 3
		{Op: OpDecVal, Amount: 1},  // 4
		{Op: OpEndLoop, Arg: 4},    // 5
		{Op: OpDecPtr, Arg: 1},     // 6
		{Op: OpDecVal, Amount: 1},  // 7
		{Op: OpEndLoop, Arg: 2},    // 8
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lower() mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerEmptyLoop(t *testing.T) {
	got := Lower([]ir.Node{ir.Loop{}}).Code()
	want := []Instruction{{Op: OpStartLoop, Arg: 2}, {Op: OpEndLoop, Arg: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lower() mismatch (-want +got):\n%s", diff)
	}
}

// checkJumpTargets verifies that every jump lands just past its partner.
func checkJumpTargets(t *testing.T, p *Program) {
	t.Helper()
	for addr := 0; addr < p.Len(); addr++ {
		in := p.At(addr)
		switch in.Op {
		case OpStartLoop:
			end := p.At(in.Arg - 1)
			if end.Op != OpEndLoop || end.Arg != addr+1 {
				t.Errorf("START_LOOP at %04d targets %04d, partner is %v", addr, in.Arg, end)
			}
		case OpEndLoop:
			start := p.At(in.Arg - 1)
			if start.Op != OpStartLoop || start.Arg != addr+1 {
				t.Errorf("END_LOOP at %04d targets %04d, partner is %v", addr, in.Arg, start)
			}
		}
	}
}

func deepTree(depth, width int) []ir.Node {
	if depth == 0 {
		return []ir.Node{ir.IncVal{Amount: 1}, ir.Output{}}
	}
	var nodes []ir.Node
	for i := 0; i < width; i++ {
		nodes = append(nodes, ir.IncPtr{Amount: uint(i + 1)})
		nodes = append(nodes, ir.Loop{Body: deepTree(depth-1, width)})
	}
	return nodes
}

func TestJumpTargetsAtEveryDepth(t *testing.T) {
	for depth := 0; depth <= 5; depth++ {
		p := Lower(deepTree(depth, 3))
		checkJumpTargets(t, p)
		if err := p.Validate(); err != nil {
			t.Errorf("depth %d: Validate() error: %v", depth, err)
		}
	}
}

func TestValidateRejectsBrokenPrograms(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
		want string
	}{
		{"unknown opcode", []Instruction{{Op: 0x7F}}, "unknown opcode"},
		{"negative count", []Instruction{{Op: OpDecPtr, Arg: -1}}, "negative pointer count"},
		{"unopened end", []Instruction{{Op: OpEndLoop, Arg: 0}}, "END_LOOP without START_LOOP"},
		{"unclosed start", []Instruction{{Op: OpStartLoop, Arg: 2}}, "START_LOOP without END_LOOP"},
		{"bad start target", []Instruction{{Op: OpStartLoop, Arg: 1}, {Op: OpEndLoop, Arg: 1}}, "START_LOOP target"},
		{"bad end target", []Instruction{{Op: OpStartLoop, Arg: 2}, {Op: OpEndLoop, Arg: 0}}, "END_LOOP target"},
	}
	for _, tc := range tests {
		err := NewProgram(tc.code).Validate()
		if err == nil {
			t.Errorf("%s: Validate() = nil, want error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: Validate() = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestProgramIsImmutable(t *testing.T) {
	code := []Instruction{{Op: OpIncVal, Amount: 1}}
	p := NewProgram(code)
	code[0].Amount = 9
	p.Code()[0].Amount = 7
	if got := p.At(0).Amount; got != 1 {
		t.Errorf("At(0).Amount = %d, want 1", got)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Op: OpIncVal, Amount: 4}, "INC_VAL 4"},
		{Instruction{Op: OpDecPtr, Arg: 2}, "DEC_PTR 2"},
		{Instruction{Op: OpMulVal, Arg: -1, Amount: 3}, "MUL_VAL -1, 3"},
		{Instruction{Op: OpStartLoop, Arg: 12}, "START_LOOP -> 0012"},
		{Instruction{Op: OpClear}, "CLEAR"},
		{Instruction{Op: 0xEE}, "UNKNOWN(0xEE)"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestOpcodeTableComplete(t *testing.T) {
	for _, op := range AllOpcodes() {
		if !op.Valid() {
			t.Errorf("%v missing from opcode table", op)
		}
	}
	if len(AllOpcodes()) != len(opcodeInfoTable) {
		t.Errorf("AllOpcodes() has %d entries, table has %d", len(AllOpcodes()), len(opcodeInfoTable))
	}
}
