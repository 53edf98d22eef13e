//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"zkhunt/internal/domain"
	"zkhunt/internal/ports/nakama"
)

type sessionResponse struct {
	Session domain.Session `json:"session"`
	MatchID string         `json:"match_id"`
}

func TestCreateJoinAndRelay(t *testing.T) {
	hunter := NewTestClient(t)
	defer hunter.Close()
	prey := NewTestClient(t)
	defer prey.Close()

	var created sessionResponse
	hunter.Call(t, nakama.RpcCreateGame, map[string]any{}, &created)
	if created.MatchID == "" {
		t.Fatal("create returned no relay match")
	}
	if _, err := hunter.Socket.JoinMatch(context.Background(), nil, created.MatchID, nil); err != nil {
		t.Fatalf("hunter failed to join relay: %v", err)
	}

	var joined sessionResponse
	prey.Call(t, nakama.RpcJoinGame, map[string]any{"session_id": created.Session.ID}, &joined)
	if joined.Session.Phase != domain.PhaseHunterTurn {
		t.Fatalf("phase after join = %s", joined.Session.Phase)
	}

	data := hunter.WaitForMatchData(t, nakama.OpSessionUpdated, 5*time.Second)
	var view domain.Session
	if err := json.Unmarshal(data.Data, &view); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if view.Prey != prey.UserID {
		t.Fatalf("snapshot prey = %q, want %q", view.Prey, prey.UserID)
	}

	if _, err := prey.Socket.JoinMatch(context.Background(), nil, created.MatchID, nil); err != nil {
		t.Fatalf("prey failed to join relay: %v", err)
	}
	t.Logf("Session %d running on relay %s", created.Session.ID, created.MatchID)
}
