package vm

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/tapeworm/ir"
)

func TestImageRoundTrip(t *testing.T) {
	p := Lower(deepTree(2, 2))
	data, err := EncodeImage(p)
	if err != nil {
		t.Fatalf("EncodeImage() error: %v", err)
	}
	if !IsImage(data) {
		t.Fatal("encoded image lacks magic")
	}

	got, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage() error: %v", err)
	}
	if diff := cmp.Diff(p.Code(), got.Code()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := EncodeImage(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-encoding produced different bytes")
	}
}

func TestDecodeImageErrors(t *testing.T) {
	good, err := EncodeImage(Lower(deepTree(1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	newer := append([]byte(nil), good...)
	binary.BigEndian.PutUint16(newer[4:], ImageVersion+1)

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "TTBC")

	broken, err := EncodeImage(NewProgram([]Instruction{{Op: OpStartLoop, Arg: 5}}))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"short", []byte("TW"), "too short"},
		{"magic", badMagic, "invalid image magic"},
		{"version", newer, "newer than supported"},
		{"payload", append(append([]byte(nil), good[:6]...), 0xFF, 0x00), "unmarshal image"},
		{"pairing", broken, "invalid image"},
	}
	for _, tc := range tests {
		_, err := DecodeImage(tc.data)
		if err == nil {
			t.Errorf("%s: DecodeImage() = nil error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: DecodeImage() = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestDisassemble(t *testing.T) {
	p := NewProgram([]Instruction{
		{Op: OpIncVal, Amount: 5},
		{Op: OpStartLoop, Arg: 4},
		{Op: OpDecVal, Amount: 1},
		{Op: OpEndLoop, Arg: 2},
		{Op: OpOutput},
	})
	got := p.DisassembleWithName("demo")
	want := "; === demo ===\n" +
		"; tapeworm bytecode v1\n" +
		"; 5 instructions\n\n" +
		"0000  INC_VAL 5\n" +
		"0001  START_LOOP -> 0004\n" +
		"0002    DEC_VAL 1\n" +
		"0003  END_LOOP -> 0002\n" +
		"0004  OUTPUT\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Disassemble mismatch (-want +got):\n%s", diff)
	}
}

func TestImageRoundTripLargeProgram(t *testing.T) {
	const pairs = 70000
	nodes := make([]ir.Node, 0, 2*pairs)
	for i := 0; i < pairs; i++ {
		nodes = append(nodes, ir.IncPtr{Amount: 1}, ir.IncVal{Amount: 1})
	}
	p := Lower(nodes)
	if p.Len() <= 131072 {
		t.Fatalf("Len() = %d, want more than 131072", p.Len())
	}

	data, err := EncodeImage(p)
	if err != nil {
		t.Fatalf("EncodeImage() error: %v", err)
	}
	got, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage() error: %v", err)
	}
	if got.Len() != p.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), p.Len())
	}
	if diff := cmp.Diff(p.Code(), got.Code()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
