package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"zkhunt/internal/app"
	"zkhunt/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// relaySignal is the MatchSignal payload sent after every successful action.
type relaySignal struct {
	Session *domain.Session `json:"session"`
	Events  []relayEvent    `json:"events,omitempty"`
}

type relayEvent struct {
	Kind       app.EventKind   `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	Recipients []string        `json:"recipients,omitempty"`
}

// relayPublisher locates a session's relay match through its label and signals it.
type relayPublisher struct {
	nk runtime.NakamaModule
}

func newRelayPublisher(nk runtime.NakamaModule) *relayPublisher {
	return &relayPublisher{nk: nk}
}

func (r *relayPublisher) create(ctx context.Context, session *domain.Session) (string, error) {
	return r.nk.MatchCreate(ctx, MatchNameSession, map[string]interface{}{
		"session_id": sessionLabelKey(session.ID),
		"player1":    session.Player1,
		"player2":    session.Player2,
	})
}

// find returns the relay match id, or "" when the relay is gone.
func (r *relayPublisher) find(ctx context.Context, sessionID uint64) (string, error) {
	query := fmt.Sprintf("+label.session:%s", sessionLabelKey(sessionID))
	matches, err := r.nk.MatchList(ctx, 1, true, "", nil, nil, query)
	if err != nil {
		return "", fmt.Errorf("list relay matches: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].GetMatchId(), nil
}

// ensure returns the running relay of a session, starting a new one when the
// previous relay shut down or was never created. Ended sessions get no new relay.
func (r *relayPublisher) ensure(ctx context.Context, session *domain.Session) (string, bool, error) {
	matchID, err := r.find(ctx, session.ID)
	if err != nil || matchID != "" || session.Phase == domain.PhaseEnded {
		return matchID, false, err
	}
	matchID, err = r.create(ctx, session)
	if err != nil {
		return "", false, fmt.Errorf("recreate relay: %w", err)
	}
	return matchID, true, nil
}

// publish forwards the outcome to the session relay.
func (r *relayPublisher) publish(ctx context.Context, out app.Outcome) (string, error) {
	matchID, _, err := r.ensure(ctx, out.Session)
	if err != nil || matchID == "" {
		return "", err
	}

	signal := relaySignal{Session: out.Session}
	for _, ev := range out.Events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return matchID, fmt.Errorf("marshal %s event: %w", ev.Kind, err)
		}
		signal.Events = append(signal.Events, relayEvent{Kind: ev.Kind, Payload: payload, Recipients: ev.Recipients})
	}
	return matchID, r.signal(ctx, matchID, signal)
}

// resume returns the session relay for readers. A relay started here is
// seeded with the current snapshot so joiners see the board at once.
func (r *relayPublisher) resume(ctx context.Context, session *domain.Session) (string, error) {
	matchID, created, err := r.ensure(ctx, session)
	if err != nil || !created {
		return matchID, err
	}
	return matchID, r.signal(ctx, matchID, relaySignal{Session: session})
}

func (r *relayPublisher) signal(ctx context.Context, matchID string, signal relaySignal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("marshal relay signal: %w", err)
	}
	if _, err := r.nk.MatchSignal(ctx, matchID, string(data)); err != nil {
		return fmt.Errorf("signal relay %s: %w", matchID, err)
	}
	return nil
}
