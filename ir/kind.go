package ir

import "fmt"

// Kind identifies a node variant. The byte values are frozen: they define
// the variant order used by Compare and the tag bytes written by Serialize,
// so existing values must never be renumbered.
type Kind byte

const (
	KindIncVal Kind = 0x01
	KindDecVal Kind = 0x02
	KindIncPtr Kind = 0x03
	KindDecPtr Kind = 0x04
	KindMulVal Kind = 0x05
	KindClear  Kind = 0x06
	KindLoop   Kind = 0x07
	KindOutput Kind = 0x08
	KindInput  Kind = 0x09
)

var kindNames = map[Kind]string{
	KindIncVal: "IncVal",
	KindDecVal: "DecVal",
	KindIncPtr: "IncPtr",
	KindDecPtr: "DecPtr",
	KindMulVal: "MulVal",
	KindClear:  "Clear",
	KindLoop:   "Loop",
	KindOutput: "Output",
	KindInput:  "Input",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(0x%02X)", byte(k))
}

// AllKinds returns every defined kind in tag order.
func AllKinds() []Kind {
	return []Kind{
		KindIncVal, KindDecVal, KindIncPtr, KindDecPtr, KindMulVal,
		KindClear, KindLoop, KindOutput, KindInput,
	}
}
