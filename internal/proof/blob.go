// Package proof decodes the public inputs carried at the front of a proof blob
// and binds them to session state before any cryptographic verification.
//
// Blob layout: a 4-byte big-endian public input count, then that many 32-byte
// big-endian field elements, then the serialized proof.
package proof

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// HeaderSize is the length of the public input count prefix.
	HeaderSize = 4
	// FieldSize is the width of one encoded public input.
	FieldSize = 32
	// PaddingByte fills unused searched-tile slots.
	PaddingByte = 255
)

var (
	// ErrMalformedProof is returned when a blob is too short or its header is inconsistent.
	ErrMalformedProof = errors.New("malformed proof blob")
	// ErrBindingMismatch is returned when a public input differs from the expected state.
	ErrBindingMismatch = errors.New("public input does not match session state")
)

// Kind selects the verification key a blob is checked against.
type Kind int

const (
	// KindJungleMove covers entering the jungle and moving inside it.
	KindJungleMove Kind = iota + 1
	// KindSearchResponse covers proofs of non-presence on searched tiles.
	KindSearchResponse
)

func (k Kind) String() string {
	switch k {
	case KindJungleMove:
		return "jungle_move"
	case KindSearchResponse:
		return "search_response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Encode assembles a blob from public inputs and proof bytes.
func Encode(publicInputs [][FieldSize]byte, proof []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(publicInputs)*FieldSize+len(proof))
	binary.BigEndian.PutUint32(out, uint32(len(publicInputs)))
	for _, f := range publicInputs {
		out = append(out, f[:]...)
	}
	return append(out, proof...)
}

// Decode splits a blob into its declared public inputs and the trailing proof bytes.
func Decode(blob []byte) ([][FieldSize]byte, []byte, error) {
	count, err := PublicInputCount(blob)
	if err != nil {
		return nil, nil, err
	}
	end := HeaderSize + count*FieldSize
	inputs := make([][FieldSize]byte, count)
	for i := range inputs {
		copy(inputs[i][:], blob[HeaderSize+i*FieldSize:])
	}
	return inputs, blob[end:], nil
}

// PublicInputCount reads the header.
func PublicInputCount(blob []byte) (int, error) {
	if len(blob) < HeaderSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrMalformedProof, len(blob))
	}
	n := binary.BigEndian.Uint32(blob[:HeaderSize])
	if n > uint32((len(blob)-HeaderSize)/FieldSize) {
		return 0, fmt.Errorf("%w: header declares %d inputs, blob has %d bytes", ErrMalformedProof, n, len(blob))
	}
	return int(n), nil
}

// Uint8Field encodes a small value into the last byte of a field element.
func Uint8Field(v byte) [FieldSize]byte {
	var f [FieldSize]byte
	f[FieldSize-1] = v
	return f
}
