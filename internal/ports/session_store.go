package ports

import (
	"context"
	"errors"

	"zkhunt/internal/domain"
)

var (
	// ErrNotFound is returned when no live session exists under an id.
	ErrNotFound = errors.New("session not found in store")
	// ErrConflict is returned when a conditional write loses to a concurrent writer.
	ErrConflict = errors.New("session was modified concurrently")
)

// SessionStore persists sessions with optimistic concurrency and a renewable expiry.
type SessionStore interface {
	// NextID reserves the next session id. Ids increase monotonically from 1.
	NextID(ctx context.Context) (uint64, error)

	// Get loads a session and the opaque version it was read at.
	// Returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id uint64) (*domain.Session, string, error)

	// Put writes a session if the stored version still equals version.
	// An empty version means the session must not exist yet.
	// Every successful write renews the session expiry.
	// Returns ErrConflict when the condition fails.
	Put(ctx context.Context, s *domain.Session, version string) error
}
