package proof

import (
	"errors"
	"testing"
)

func commitmentOf(b byte) [FieldSize]byte {
	var c [FieldSize]byte
	for i := range c {
		c[i] = b + byte(i)
	}
	return c
}

func TestLayoutOffsets(t *testing.T) {
	tests := []struct {
		field Field
		want  int
	}{
		{JungleMoveLayout.OldCommitment, 4},
		{JungleMoveLayout.NewCommitment, 36},
		{JungleMoveLayout.MapID, 68},
		{SearchResponseLayout.Commitment, 4},
		{SearchResponseLayout.SearchedX[0], 36},
		{SearchResponseLayout.SearchedX[1], 68},
		{SearchResponseLayout.SearchedX[8], 292},
		{SearchResponseLayout.SearchedY[0], 324},
		{SearchResponseLayout.SearchedY[8], 580},
	}
	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			if got := tt.field.Offset(); got != tt.want {
				t.Fatalf("offset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	blob := EncodeJungleMove(commitmentOf(1), commitmentOf(2), 7, []byte{0xde, 0xad})
	if len(blob) != 4+3*32+2 {
		t.Fatalf("unexpected blob length %d", len(blob))
	}
	inputs, rest, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(inputs) != 3 || inputs[1] != commitmentOf(2) || inputs[2][31] != 7 {
		t.Fatalf("unexpected inputs %x", inputs)
	}
	if string(rest) != "\xde\xad" {
		t.Fatalf("unexpected proof bytes %x", rest)
	}
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	blob := EncodeJungleMove(commitmentOf(1), commitmentOf(2), 0, nil)
	blob[3] = 9
	if _, _, err := Decode(blob); !errors.Is(err, ErrMalformedProof) {
		t.Fatalf("expected ErrMalformedProof, got %v", err)
	}
}

func TestBindEnterJungle(t *testing.T) {
	newC := commitmentOf(9)
	blob := EncodeJungleMove([FieldSize]byte{}, newC, 4, []byte("proof"))

	if err := BindEnterJungle(blob, newC, 4); err != nil {
		t.Fatalf("expected binding to pass, got %v", err)
	}
	if err := BindEnterJungle(blob, newC, 5); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("expected map mismatch, got %v", err)
	}
	if err := BindEnterJungle(blob, commitmentOf(10), 4); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("expected commitment mismatch, got %v", err)
	}

	// The old commitment slot is unconstrained when entering.
	mutated := append([]byte(nil), blob...)
	mutated[10] ^= 0xff
	if err := BindEnterJungle(mutated, newC, 4); err != nil {
		t.Fatalf("old commitment should not be bound on enter, got %v", err)
	}
}

func TestBindJungleMove_EveryBoundByte(t *testing.T) {
	oldC, newC := commitmentOf(3), commitmentOf(40)
	blob := EncodeJungleMove(oldC, newC, 12, []byte("proof"))
	if err := BindJungleMove(blob, oldC, newC, 12); err != nil {
		t.Fatalf("expected binding to pass, got %v", err)
	}

	for i := HeaderSize; i < HeaderSize+JungleMoveLayout.Count*FieldSize; i++ {
		mutated := append([]byte(nil), blob...)
		mutated[i] ^= 0x01
		if err := BindJungleMove(mutated, oldC, newC, 12); !errors.Is(err, ErrBindingMismatch) {
			t.Fatalf("mutation at byte %d not rejected: %v", i, err)
		}
	}
}

func TestBindJungleMove_ProofBytesNotBound(t *testing.T) {
	oldC, newC := commitmentOf(3), commitmentOf(40)
	blob := EncodeJungleMove(oldC, newC, 12, []byte("proof"))
	blob[len(blob)-1] ^= 0xff
	if err := BindJungleMove(blob, oldC, newC, 12); err != nil {
		t.Fatalf("trailing proof bytes are left to the verifier, got %v", err)
	}
}

func TestBindJungleMove_Truncated(t *testing.T) {
	oldC, newC := commitmentOf(3), commitmentOf(40)
	blob := EncodeJungleMove(oldC, newC, 12, nil)
	for _, n := range []int{0, 3, 4, 40, 99} {
		if err := BindJungleMove(blob[:n], oldC, newC, 12); !errors.Is(err, ErrMalformedProof) {
			t.Fatalf("length %d: expected ErrMalformedProof, got %v", n, err)
		}
	}
}

func TestBindJungleMove_WrongInputCount(t *testing.T) {
	oldC, newC := commitmentOf(3), commitmentOf(40)
	blob := Encode([][FieldSize]byte{oldC, newC, Uint8Field(12), {}}, nil)
	if err := BindJungleMove(blob, oldC, newC, 12); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("expected count mismatch, got %v", err)
	}
}

func TestBindSearchResponse(t *testing.T) {
	c := commitmentOf(77)
	tiles := []Tile{{X: 3, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 5}}
	blob := EncodeSearchResponse(c, tiles, []byte("proof"))

	if err := BindSearchResponse(blob, c, tiles); err != nil {
		t.Fatalf("expected binding to pass, got %v", err)
	}

	tests := []struct {
		name  string
		tiles []Tile
	}{
		{"fewer tiles than proven", tiles[:2]},
		{"more tiles than proven", append(append([]Tile(nil), tiles...), Tile{X: 4, Y: 4})},
		{"reordered", []Tile{tiles[1], tiles[0], tiles[2]}},
		{"different tile", []Tile{{X: 3, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 6}}},
		{"no tiles", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := BindSearchResponse(blob, c, tt.tiles); !errors.Is(err, ErrBindingMismatch) {
				t.Fatalf("expected mismatch, got %v", err)
			}
		})
	}

	if err := BindSearchResponse(blob, commitmentOf(78), tiles); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("expected commitment mismatch, got %v", err)
	}
}

func TestBindSearchResponse_EveryBoundByte(t *testing.T) {
	c := commitmentOf(5)
	tiles := []Tile{{X: 0, Y: 7}}
	blob := EncodeSearchResponse(c, tiles, nil)

	for i := HeaderSize; i < len(blob); i++ {
		mutated := append([]byte(nil), blob...)
		mutated[i] ^= 0x80
		if err := BindSearchResponse(mutated, c, tiles); !errors.Is(err, ErrBindingMismatch) {
			t.Fatalf("mutation at byte %d not rejected: %v", i, err)
		}
	}
}

func TestBindSearchResponse_TooManyTiles(t *testing.T) {
	tiles := make([]Tile, MaxTiles+1)
	if err := BindSearchResponse(nil, commitmentOf(1), tiles); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}
