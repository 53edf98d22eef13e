package nakama

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"zkhunt/internal/domain"
	"zkhunt/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(nk *fakeNakama, now time.Time) *NakamaSessionStore {
	store := NewNakamaSessionStore(nk, time.Hour)
	store.now = func() time.Time { return now }
	return store
}

func TestNextIDIsMonotonic(t *testing.T) {
	store := newTestStore(newFakeNakama(), time.Unix(1000, 0))
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		id, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestPutCreateOnlyAndConditionalWrites(t *testing.T) {
	nk := newFakeNakama()
	store := newTestStore(nk, time.Unix(1000, 0))
	ctx := context.Background()
	session := &domain.Session{ID: 7, Hunter: "u1", Player1: "u1", Phase: domain.PhaseWaitingForSecondPlayer}

	require.NoError(t, store.Put(ctx, session, ""))
	assert.ErrorIs(t, store.Put(ctx, session, ""), ports.ErrConflict)

	got, version, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	got.Prey = "u2"
	require.NoError(t, store.Put(ctx, got, version))
	assert.ErrorIs(t, store.Put(ctx, got, version), ports.ErrConflict, "stale version must conflict")
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(newFakeNakama(), time.Unix(1000, 0))
	_, _, err := store.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPutRenewsExpiryAndExpiredSessionsVanish(t *testing.T) {
	nk := newFakeNakama()
	now := time.Unix(1000, 0)
	store := newTestStore(nk, now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &domain.Session{ID: 1}, ""))
	var record sessionRecord
	require.NoError(t, json.Unmarshal([]byte(nk.objects[objectID(sessionCollection, "1", "")].value), &record))
	assert.Equal(t, now.Add(time.Hour).Unix(), record.ExpiresAt)

	store.now = func() time.Time { return now.Add(30 * time.Minute) }
	_, version, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, &domain.Session{ID: 1}, version))

	store.now = func() time.Time { return now.Add(80 * time.Minute) }
	_, _, err = store.Get(ctx, 1)
	require.NoError(t, err, "renewed write extends the window")

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, _, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.NotContains(t, nk.objects, objectID(sessionCollection, "1", ""))
}

func TestNotificationAdapter(t *testing.T) {
	nk := newFakeNakama()
	store := newTestStore(nk, time.Unix(1000, 0))
	ctx := context.Background()
	notifier := NewNakamaNotificationAdapter(nk, store)

	require.NoError(t, notifier.OnStart(ctx, 3, "u1", "u2"))
	require.Len(t, nk.notifications, 2)
	assert.Equal(t, NotificationMatchStarted, nk.notifications[0].Code)
	assert.Equal(t, "u1", nk.notifications[0].UserID)
	assert.Equal(t, "u2", nk.notifications[1].UserID)

	require.NoError(t, store.Put(ctx, &domain.Session{
		ID: 3, Player1: "u1", Player2: "u2", Player1Score: 1, Player2Score: 1, Phase: domain.PhaseEnded,
	}, ""))
	require.NoError(t, notifier.OnEnd(ctx, 3, true))
	require.Len(t, nk.notifications, 4)
	end := nk.notifications[2]
	assert.Equal(t, NotificationMatchEnded, end.Code)
	assert.Equal(t, true, end.Content["player1_won"])
	assert.Equal(t, "", end.Content["winner"])

	assert.ErrorIs(t, notifier.OnEnd(ctx, 404, true), ports.ErrNotFound)
}
