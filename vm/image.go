package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current image format version.
const ImageVersion uint16 = 1

// ImageMagic starts every program image: "TWBC" (TapeWorm ByteCode).
var ImageMagic = []byte{'T', 'W', 'B', 'C'}

// ImageExt is the conventional file extension for program images.
const ImageExt = ".twc"

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	// The default array cap (131072) is smaller than programs EncodeImage
	// accepts.
	dm, err := cbor.DecOptions{MaxArrayElements: 2147483647}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// wireInstruction is the CBOR form of an Instruction: a three-element array.
type wireInstruction struct {
	_      struct{} `cbor:",toarray"`
	Op     uint8
	Amount uint8
	Arg    int64
}

type imagePayload struct {
	Code []wireInstruction `cbor:"1,keyasint"`
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, ImageMagic)
}

// EncodeImage serializes a program: magic, big-endian version, then the
// canonical CBOR payload. Equal programs encode to identical bytes.
func EncodeImage(p *Program) ([]byte, error) {
	payload := imagePayload{Code: make([]wireInstruction, len(p.code))}
	for i, in := range p.code {
		payload.Code[i] = wireInstruction{Op: uint8(in.Op), Amount: in.Amount, Arg: int64(in.Arg)}
	}
	body, err := cborEncMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("vm: marshal image: %w", err)
	}

	buf := make([]byte, 0, len(ImageMagic)+2+len(body))
	buf = append(buf, ImageMagic...)
	buf = binary.BigEndian.AppendUint16(buf, ImageVersion)
	return append(buf, body...), nil
}

// DecodeImage parses and validates a program image.
func DecodeImage(data []byte) (*Program, error) {
	header := len(ImageMagic) + 2
	if len(data) < header {
		return nil, fmt.Errorf("image too short: need at least %d bytes, got %d", header, len(data))
	}
	if !IsImage(data) {
		return nil, fmt.Errorf("invalid image magic: expected %q, got %q", ImageMagic, data[:len(ImageMagic)])
	}
	version := binary.BigEndian.Uint16(data[len(ImageMagic):])
	if version > ImageVersion {
		return nil, fmt.Errorf("image version %d is newer than supported version %d", version, ImageVersion)
	}

	var payload imagePayload
	if err := cborDecMode.Unmarshal(data[header:], &payload); err != nil {
		return nil, fmt.Errorf("vm: unmarshal image: %w", err)
	}

	code := make([]Instruction, len(payload.Code))
	for i, w := range payload.Code {
		code[i] = Instruction{Op: Opcode(w.Op), Amount: w.Amount, Arg: int(w.Arg)}
	}
	p := &Program{code: code}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}
	return p, nil
}
