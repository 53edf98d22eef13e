package proof

import (
	"bytes"
	"fmt"
)

// Field names one 32-byte public input slot in a blob.
type Field struct {
	Name  string
	Index int // position among the public inputs
}

// Offset is the byte offset of the field inside the blob.
func (f Field) Offset() int {
	return HeaderSize + f.Index*FieldSize
}

// Read returns the raw 32 bytes of the field.
func (f Field) Read(blob []byte) ([FieldSize]byte, error) {
	var out [FieldSize]byte
	off := f.Offset()
	if len(blob) < off+FieldSize {
		return out, fmt.Errorf("%w: %s at offset %d needs %d bytes, have %d", ErrMalformedProof, f.Name, off, off+FieldSize, len(blob))
	}
	copy(out[:], blob[off:off+FieldSize])
	return out, nil
}

// ReadUint8 returns a field that carries a single value in its last byte.
// The leading 31 bytes must be zero.
func (f Field) ReadUint8(blob []byte) (byte, error) {
	raw, err := f.Read(blob)
	if err != nil {
		return 0, err
	}
	var zero [FieldSize - 1]byte
	if !bytes.Equal(raw[:FieldSize-1], zero[:]) {
		return 0, fmt.Errorf("%w: %s has non-zero high bytes", ErrBindingMismatch, f.Name)
	}
	return raw[FieldSize-1], nil
}

func (f Field) expect(blob []byte, want [FieldSize]byte) error {
	got, err := f.Read(blob)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s", ErrBindingMismatch, f.Name)
	}
	return nil
}

func (f Field) expectUint8(blob []byte, want byte) error {
	got, err := f.ReadUint8(blob)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s is %d, want %d", ErrBindingMismatch, f.Name, got, want)
	}
	return nil
}

// JungleMoveLayout is the public input order of the jungle move circuit.
var JungleMoveLayout = struct {
	OldCommitment Field
	NewCommitment Field
	MapID         Field
	Count         int
}{
	OldCommitment: Field{Name: "old_commitment", Index: 0},
	NewCommitment: Field{Name: "new_commitment", Index: 1},
	MapID:         Field{Name: "map_id", Index: 2},
	Count:         3,
}

// SearchResponseLayout is the public input order of the search response circuit:
// the commitment followed by nine searched x values then nine searched y values.
var SearchResponseLayout = newSearchResponseLayout()

type searchResponseLayout struct {
	Commitment Field
	SearchedX  [MaxTiles]Field
	SearchedY  [MaxTiles]Field
	Count      int
}

// MaxTiles is the number of searched tile slots in a search response.
const MaxTiles = 9

func newSearchResponseLayout() searchResponseLayout {
	l := searchResponseLayout{
		Commitment: Field{Name: "commitment", Index: 0},
		Count:      1 + 2*MaxTiles,
	}
	for i := 0; i < MaxTiles; i++ {
		l.SearchedX[i] = Field{Name: fmt.Sprintf("searched_x[%d]", i), Index: 1 + i}
		l.SearchedY[i] = Field{Name: fmt.Sprintf("searched_y[%d]", i), Index: 1 + MaxTiles + i}
	}
	return l
}

func expectCount(blob []byte, want int) error {
	n, err := PublicInputCount(blob)
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("%w: public input count is %d, want %d", ErrBindingMismatch, n, want)
	}
	return nil
}
