package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"zkhunt/internal/domain"
	"zkhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const maxCounterRetries = 5

// sessionRecord is the stored form of a session.
type sessionRecord struct {
	Session   *domain.Session `json:"session"`
	ExpiresAt int64           `json:"expires_at"`
}

type counterRecord struct {
	Value uint64 `json:"value"`
}

// NakamaSessionStore persists sessions as system-owned storage objects.
// Writes are conditional on the object version read earlier.
type NakamaSessionStore struct {
	nk  runtime.NakamaModule
	ttl time.Duration
	now func() time.Time
}

// NewNakamaSessionStore creates a session store with the given expiry window.
func NewNakamaSessionStore(nk runtime.NakamaModule, ttl time.Duration) *NakamaSessionStore {
	return &NakamaSessionStore{nk: nk, ttl: ttl, now: time.Now}
}

func sessionKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// NextID increments the shared counter object. Concurrent callers retry on version conflicts.
func (s *NakamaSessionStore) NextID(ctx context.Context) (uint64, error) {
	for attempt := 0; attempt < maxCounterRetries; attempt++ {
		objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
			Collection: counterCollection,
			Key:        counterKey,
		}})
		if err != nil {
			return 0, fmt.Errorf("failed to read session counter: %w", err)
		}

		var counter counterRecord
		version := "*"
		if len(objects) > 0 {
			if err := json.Unmarshal([]byte(objects[0].GetValue()), &counter); err != nil {
				return 0, fmt.Errorf("failed to unmarshal session counter: %w", err)
			}
			version = objects[0].GetVersion()
		}
		counter.Value++

		value, err := json.Marshal(counter)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal session counter: %w", err)
		}
		_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      counterCollection,
			Key:             counterKey,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		}})
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to write session counter: %w", err)
		}
		return counter.Value, nil
	}
	return 0, fmt.Errorf("session counter: %w", ports.ErrConflict)
}

// Get loads a session and its storage version. Expired sessions are deleted and reported as missing.
func (s *NakamaSessionStore) Get(ctx context.Context, id uint64) (*domain.Session, string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: sessionCollection,
		Key:        sessionKey(id),
	}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read session: %w", err)
	}
	if len(objects) == 0 {
		return nil, "", ports.ErrNotFound
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &record); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if record.Session == nil {
		return nil, "", fmt.Errorf("session %d: empty record", id)
	}

	if record.ExpiresAt > 0 && s.now().Unix() >= record.ExpiresAt {
		// A concurrent renewal changes the version and makes this delete a no-op.
		_ = s.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
			Collection: sessionCollection,
			Key:        sessionKey(id),
			Version:    objects[0].GetVersion(),
		}})
		return nil, "", ports.ErrNotFound
	}
	return record.Session, objects[0].GetVersion(), nil
}

// Put writes the session and renews its expiry. An empty version only creates.
func (s *NakamaSessionStore) Put(ctx context.Context, session *domain.Session, version string) error {
	if session == nil {
		return errors.New("session is required")
	}
	if version == "" {
		version = "*"
	}

	value, err := json.Marshal(sessionRecord{
		Session:   session,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      sessionCollection,
		Key:             sessionKey(session.ID),
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return ports.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

var _ ports.SessionStore = (*NakamaSessionStore)(nil)
