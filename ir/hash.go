package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// ---------------------------------------------------------------------------
// Deterministic serialization for content hashing.
//
// Encoding:
//   - First byte: HashVersion
//   - Each node: Kind tag byte followed by its fields
//   - uint8 amounts: 1 byte; pointer amounts and offsets: 8 bytes big-endian
//   - Loop: uint32 big-endian body length, then the body nodes inline
// ---------------------------------------------------------------------------

// HashVersion is the serialization format version. Bumping it invalidates
// every previously computed tree hash.
const HashVersion byte = 1

// Serialize produces a deterministic byte encoding of a tree. Structurally
// equal trees always serialize identically.
func Serialize(nodes []Node) []byte {
	buf := make([]byte, 0, 1+2*len(nodes))
	buf = append(buf, HashVersion)
	return appendSeq(buf, nodes)
}

// Hash returns the SHA-256 of Serialize(nodes).
func Hash(nodes []Node) [32]byte {
	return sha256.Sum256(Serialize(nodes))
}

func appendSeq(buf []byte, nodes []Node) []byte {
	for _, n := range nodes {
		buf = appendNode(buf, n)
	}
	return buf
}

func appendNode(buf []byte, n Node) []byte {
	buf = append(buf, byte(n.Kind()))

	switch x := n.(type) {
	case IncVal:
		buf = append(buf, x.Amount)
	case DecVal:
		buf = append(buf, x.Amount)
	case IncPtr:
		buf = binary.BigEndian.AppendUint64(buf, uint64(x.Amount))
	case DecPtr:
		buf = binary.BigEndian.AppendUint64(buf, uint64(x.Amount))
	case MulVal:
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(x.Offset)))
		buf = append(buf, x.Amount)
	case Loop:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(x.Body)))
		buf = appendSeq(buf, x.Body)
	case Clear, Output, Input:
		// tag only
	default:
		panic(fmt.Sprintf("ir: unknown node type %T", n))
	}
	return buf
}
