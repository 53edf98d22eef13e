package proof

import "fmt"

// Tile is a searched coordinate as it appears in a search response.
type Tile struct {
	X, Y int
}

// BindEnterJungle checks a jungle move blob used to enter the jungle from a
// public tile. The old commitment is not bound because no commitment exists yet.
func BindEnterJungle(blob []byte, newCommitment [FieldSize]byte, mapIndex int) error {
	l := JungleMoveLayout
	if err := expectCount(blob, l.Count); err != nil {
		return err
	}
	if err := l.NewCommitment.expect(blob, newCommitment); err != nil {
		return err
	}
	return l.MapID.expectUint8(blob, byte(mapIndex))
}

// BindJungleMove checks a jungle move blob against the stored commitment.
func BindJungleMove(blob []byte, oldCommitment, newCommitment [FieldSize]byte, mapIndex int) error {
	l := JungleMoveLayout
	if err := expectCount(blob, l.Count); err != nil {
		return err
	}
	if err := l.OldCommitment.expect(blob, oldCommitment); err != nil {
		return err
	}
	if err := l.NewCommitment.expect(blob, newCommitment); err != nil {
		return err
	}
	return l.MapID.expectUint8(blob, byte(mapIndex))
}

// BindSearchResponse checks that a non-presence proof addresses exactly the
// searched tiles, in order, with every remaining slot padded.
func BindSearchResponse(blob []byte, commitment [FieldSize]byte, tiles []Tile) error {
	if len(tiles) > MaxTiles {
		return fmt.Errorf("%w: %d searched tiles exceed %d slots", ErrBindingMismatch, len(tiles), MaxTiles)
	}
	l := SearchResponseLayout
	if err := expectCount(blob, l.Count); err != nil {
		return err
	}
	if err := l.Commitment.expect(blob, commitment); err != nil {
		return err
	}
	for i := 0; i < MaxTiles; i++ {
		wantX, wantY := byte(PaddingByte), byte(PaddingByte)
		if i < len(tiles) {
			wantX, wantY = byte(tiles[i].X), byte(tiles[i].Y)
		}
		if err := l.SearchedX[i].expectUint8(blob, wantX); err != nil {
			return err
		}
		if err := l.SearchedY[i].expectUint8(blob, wantY); err != nil {
			return err
		}
	}
	return nil
}

// EncodeJungleMove builds a jungle move blob. Used by clients and fixtures.
func EncodeJungleMove(oldCommitment, newCommitment [FieldSize]byte, mapIndex int, proof []byte) []byte {
	return Encode([][FieldSize]byte{oldCommitment, newCommitment, Uint8Field(byte(mapIndex))}, proof)
}

// EncodeSearchResponse builds a search response blob, padding unused slots.
func EncodeSearchResponse(commitment [FieldSize]byte, tiles []Tile, proof []byte) []byte {
	inputs := make([][FieldSize]byte, 0, SearchResponseLayout.Count)
	inputs = append(inputs, commitment)
	for i := 0; i < MaxTiles; i++ {
		v := byte(PaddingByte)
		if i < len(tiles) {
			v = byte(tiles[i].X)
		}
		inputs = append(inputs, Uint8Field(v))
	}
	for i := 0; i < MaxTiles; i++ {
		v := byte(PaddingByte)
		if i < len(tiles) {
			v = byte(tiles[i].Y)
		}
		inputs = append(inputs, Uint8Field(v))
	}
	return Encode(inputs, proof)
}
