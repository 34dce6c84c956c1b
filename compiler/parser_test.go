package compiler

import (
	"errors"
	"testing"

	"github.com/chazu/tapeworm/ir"
)

func TestParseFlat(t *testing.T) {
	got, err := Parse("+ + > . ,")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []ir.Node{
		ir.IncVal{Amount: 1}, ir.IncVal{Amount: 1}, ir.IncPtr{Amount: 1}, ir.Output{}, ir.Input{},
	}
	if !ir.EqualSeq(got, want) {
		t.Errorf("Parse() = %s, want %s", ir.SeqString(got), ir.SeqString(want))
	}
}

func TestParseNested(t *testing.T) {
	got, err := Parse("[-[<]]>[]")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []ir.Node{
		ir.Loop{Body: []ir.Node{
			ir.DecVal{Amount: 1},
			ir.Loop{Body: []ir.Node{ir.DecPtr{Amount: 1}}},
		}},
		ir.IncPtr{Amount: 1},
		ir.Loop{},
	}
	if !ir.EqualSeq(got, want) {
		t.Errorf("Parse() = %s, want %s", ir.SeqString(got), ir.SeqString(want))
	}
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse("no instructions here")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Parse() = %s, want empty", ir.SeqString(got))
	}
}

func TestParseUnmatched(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"[", []string{"line 1, column 1: unmatched '['"}},
		{"]", []string{"line 1, column 1: unmatched ']'"}},
		{"+[[-]\n]]", []string{"line 2, column 2: unmatched ']'"}},
		{"[\n [ ]] ] [", []string{
			"line 2, column 7: unmatched ']'",
			"line 2, column 9: unmatched '['",
		}},
		{"[[\n]]]][", []string{
			"line 2, column 3: unmatched ']'",
			"line 2, column 4: unmatched ']'",
			"line 2, column 5: unmatched '['",
		}},
		{"[ ] ] [", []string{
			"line 1, column 5: unmatched ']'",
			"line 1, column 7: unmatched '['",
		}},
	}
	for _, tc := range tests {
		nodes, err := Parse(tc.src)
		if err == nil {
			t.Errorf("Parse(%q) = %s, want error", tc.src, ir.SeqString(nodes))
			continue
		}
		if nodes != nil {
			t.Errorf("Parse(%q) returned a tree with an error", tc.src)
		}
		errs := SyntaxErrors(err)
		if len(errs) != len(tc.want) {
			t.Errorf("Parse(%q): %d errors, want %d: %v", tc.src, len(errs), len(tc.want), err)
			continue
		}
		for i, w := range tc.want {
			if errs[i].Error() != w {
				t.Errorf("Parse(%q) error[%d] = %q, want %q", tc.src, i, errs[i].Error(), w)
			}
		}
	}
}

func TestSyntaxErrorIsMatchable(t *testing.T) {
	_, err := Parse("]")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("errors.As(%v, *SyntaxError) = false", err)
	}
	if se.Pos.Offset != 0 {
		t.Errorf("Pos.Offset = %d, want 0", se.Pos.Offset)
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"", "+", "[", "]", "[-]", "[->+<]", "++[>++<-]>.",
		"][", "[[[]]]", "a[b]c", "é[ü]", ",[.,]",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		nodes, err := Parse(src)
		depth := 0
		balanced := true
		for _, ch := range src {
			switch ch {
			case '[':
				depth++
			case ']':
				depth--
				if depth < 0 {
					balanced = false
				}
			}
		}
		balanced = balanced && depth == 0
		if balanced != (err == nil) {
			t.Fatalf("Parse(%q): err = %v, balanced = %v", src, err, balanced)
		}
		if err == nil {
			// Every instruction character becomes exactly one node.
			want := len(Tokenize(src)) - countLoopEnds(src)
			if got := ir.Count(nodes); got != want {
				t.Fatalf("Parse(%q): %d nodes, want %d", src, got, want)
			}
		}
	})
}

func countLoopEnds(src string) int {
	n := 0
	for _, ch := range src {
		if ch == ']' {
			n++
		}
	}
	return n
}
