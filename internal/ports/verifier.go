package ports

import (
	"context"

	"zkhunt/internal/proof"
)

// Verifier checks a proof blob against a serialized verification key.
type Verifier interface {
	// Verify returns nil when the proof is valid for the public inputs carried in blob.
	// Any other outcome, including a malformed key or blob, is a rejection.
	Verify(ctx context.Context, vk []byte, blob []byte) error
}

// KeySource provides the verification key for each proof kind.
type KeySource interface {
	VerificationKey(ctx context.Context, kind proof.Kind) ([]byte, error)
}
