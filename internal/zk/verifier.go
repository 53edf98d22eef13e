// Package zk verifies BN254 proofs produced by the prey client against
// serialized verification keys.
package zk

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"

	"zkhunt/internal/ports"
	"zkhunt/internal/proof"
)

// Backend selects the proof system used to interpret keys and proofs.
type Backend string

const (
	Groth16 Backend = "groth16"
	Plonk   Backend = "plonk"
)

var (
	ErrInvalidProof       = errors.New("invalid proof")
	ErrNonCanonicalInput  = errors.New("public input not in scalar field")
	ErrUnsupportedBackend = errors.New("unsupported proof backend")
)

// Verifier checks proof blobs. Parsed verification keys are cached by content.
type Verifier struct {
	backend Backend

	mu   sync.Mutex
	keys map[[sha256.Size]byte]any
}

var _ ports.Verifier = (*Verifier)(nil)

func NewVerifier(backend Backend) (*Verifier, error) {
	switch backend {
	case Groth16, Plonk:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
	return &Verifier{backend: backend, keys: make(map[[sha256.Size]byte]any)}, nil
}

// Verify checks blob against vk. The blob's public inputs become the public
// witness in declaration order.
func (v *Verifier) Verify(ctx context.Context, vk []byte, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	inputs, proofBytes, err := proof.Decode(blob)
	if err != nil {
		return err
	}
	publicWitness, err := PublicWitness(inputs)
	if err != nil {
		return err
	}

	key, err := v.verifyingKey(vk)
	if err != nil {
		return err
	}

	switch v.backend {
	case Groth16:
		p := groth16.NewProof(ecc.BN254)
		if _, err := p.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
			return fmt.Errorf("%w: deserialize proof: %w", proof.ErrMalformedProof, err)
		}
		if err := groth16.Verify(p, key.(groth16.VerifyingKey), publicWitness); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProof, err)
		}
	case Plonk:
		p := plonk.NewProof(ecc.BN254)
		if _, err := p.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
			return fmt.Errorf("%w: deserialize proof: %w", proof.ErrMalformedProof, err)
		}
		if err := plonk.Verify(p, key.(plonk.VerifyingKey), publicWitness); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProof, err)
		}
	}
	return nil
}

func (v *Verifier) verifyingKey(raw []byte) (any, error) {
	sum := sha256.Sum256(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if key, ok := v.keys[sum]; ok {
		return key, nil
	}

	var key any
	switch v.backend {
	case Groth16:
		vk := groth16.NewVerifyingKey(ecc.BN254)
		if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("read groth16 verifying key: %w", err)
		}
		key = vk
	case Plonk:
		vk := plonk.NewVerifyingKey(ecc.BN254)
		if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("read plonk verifying key: %w", err)
		}
		key = vk
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, v.backend)
	}
	v.keys[sum] = key
	return key, nil
}

// PublicWitness builds a public-only BN254 witness from 32-byte big-endian
// field encodings. Values at or above the scalar field modulus are rejected
// rather than reduced.
func PublicWitness(inputs [][proof.FieldSize]byte) (witness.Witness, error) {
	modulus := ecc.BN254.ScalarField()
	values := make(chan any, len(inputs))
	for i, in := range inputs {
		n := new(big.Int).SetBytes(in[:])
		if n.Cmp(modulus) >= 0 {
			close(values)
			return nil, fmt.Errorf("%w: input %d", ErrNonCanonicalInput, i)
		}
		values <- n
	}
	close(values)

	w, err := witness.New(modulus)
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	if err := w.Fill(len(inputs), 0, values); err != nil {
		return nil, fmt.Errorf("fill witness: %w", err)
	}
	return w, nil
}
