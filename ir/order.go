package ir

import "fmt"

// ---------------------------------------------------------------------------
// Structural equality and total order
// ---------------------------------------------------------------------------

// Equal reports whether a and b are structurally identical.
func Equal(a, b Node) bool {
	return Compare(a, b) == 0
}

// EqualSeq reports whether two node sequences are structurally identical.
func EqualSeq(a, b []Node) bool {
	return CompareSeq(a, b) == 0
}

// Compare defines a total order over nodes. Nodes of different variants are
// ordered by Kind; nodes of the same variant compare field by field in
// declaration order, and loops compare their bodies with CompareSeq.
// The result is -1, 0 or +1.
func Compare(a, b Node) int {
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		return cmpInt(int(ka), int(kb))
	}

	switch x := a.(type) {
	case IncVal:
		return cmpInt(int(x.Amount), int(b.(IncVal).Amount))
	case DecVal:
		return cmpInt(int(x.Amount), int(b.(DecVal).Amount))
	case IncPtr:
		return cmpUint(x.Amount, b.(IncPtr).Amount)
	case DecPtr:
		return cmpUint(x.Amount, b.(DecPtr).Amount)
	case MulVal:
		y := b.(MulVal)
		if c := cmpInt(x.Offset, y.Offset); c != 0 {
			return c
		}
		return cmpInt(int(x.Amount), int(y.Amount))
	case Loop:
		return CompareSeq(x.Body, b.(Loop).Body)
	case Clear, Output, Input:
		return 0
	default:
		panic(fmt.Sprintf("ir: unknown node type %T", a))
	}
}

// CompareSeq orders sequences lexicographically; a proper prefix sorts
// before the longer sequence.
func CompareSeq(a, b []Node) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
