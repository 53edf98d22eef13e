package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"zkhunt/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// RelayState is the realtime state of one session's relay match.
// The authoritative session lives in storage; the relay only fans out updates.
type RelayState struct {
	SessionID  string
	Players    map[string]bool
	Presences  map[string]runtime.Presence
	Phase      domain.Phase
	Round      int
	Snapshot   []byte // last session view broadcast
	EmptyTicks int
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	sessionID, _ := params["session_id"].(string)

	state := &RelayState{
		SessionID: sessionID,
		Players:   make(map[string]bool),
		Presences: make(map[string]runtime.Presence),
		Phase:     domain.PhaseWaitingForSecondPlayer,
		Round:     1,
	}
	for _, key := range []string{"player1", "player2"} {
		if id, _ := params[key].(string); id != "" {
			state.Players[id] = true
		}
	}

	label, err := relayLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Debug("MatchInit: Relay for session %s created.", sessionID)
	return state, relayTickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	relay, ok := state.(*RelayState)
	if !ok {
		return state, false, "state not found"
	}
	if !relay.Players[presence.GetUserId()] {
		return state, false, "not a participant"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	relay, ok := state.(*RelayState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		relay.Presences[p.GetUserId()] = p
	}
	relay.EmptyTicks = 0

	// Late joiners get the latest snapshot.
	if len(relay.Snapshot) > 0 {
		if err := dispatcher.BroadcastMessage(OpSessionUpdated, relay.Snapshot, presences, nil, true); err != nil {
			logger.Warn("MatchJoin: Failed to send snapshot for session %s: %v", relay.SessionID, err)
		}
	}
	mh.updateLabel(relay, dispatcher, logger)
	return relay
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	relay, ok := state.(*RelayState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(relay.Presences, p.GetUserId())
	}
	if len(relay.Presences) == 0 && relay.Phase == domain.PhaseEnded {
		logger.Info("MatchLeave: Terminating relay for ended session %s.", relay.SessionID)
		return nil
	}
	mh.updateLabel(relay, dispatcher, logger)
	return relay
}

// MatchLoop ignores client data; actions go through RPCs. Idle relays shut down.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	relay, ok := state.(*RelayState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		logger.Warn("MatchLoop: Ignoring op code %d from %s on relay %s", msg.GetOpCode(), msg.GetUserId(), relay.SessionID)
	}

	if len(relay.Presences) > 0 {
		relay.EmptyTicks = 0
		return relay
	}
	relay.EmptyTicks++
	if relay.EmptyTicks >= relayMaxEmptyTicks {
		logger.Info("MatchLoop: Terminating idle relay for session %s.", relay.SessionID)
		return nil
	}
	return relay
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Relay terminated (grace %d)", graceSeconds)
	return state
}

// MatchSignal receives a relaySignal, broadcasts the session view and routes events.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	relay, ok := state.(*RelayState)
	if !ok {
		return state, "state not found"
	}

	var signal relaySignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil || signal.Session == nil {
		logger.Warn("MatchSignal: Invalid signal for relay %s: %v", relay.SessionID, err)
		return relay, "invalid signal"
	}

	session := signal.Session
	for _, id := range []string{session.Player1, session.Player2} {
		if id != "" {
			relay.Players[id] = true
		}
	}
	relay.Phase = session.Phase
	relay.Round = session.Round

	snapshot, err := json.Marshal(newSessionView(session))
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal session %d: %v", session.ID, err)
		return relay, "marshal failed"
	}
	relay.Snapshot = snapshot
	if err := dispatcher.BroadcastMessage(OpSessionUpdated, snapshot, nil, nil, true); err != nil {
		logger.Warn("MatchSignal: Failed to broadcast session %d: %v", session.ID, err)
	}

	for _, ev := range signal.Events {
		mh.broadcastEvent(relay, dispatcher, logger, ev)
	}
	mh.updateLabel(relay, dispatcher, logger)
	return relay, "ok"
}

func (mh *matchHandler) broadcastEvent(relay *RelayState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev relayEvent) {
	bytes, err := json.Marshal(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := relay.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(OpGameEvent, bytes, recipients, nil, true); err != nil {
		logger.Warn("Failed to send event %v on relay %s: %v", ev.Kind, relay.SessionID, err)
	}
}

func relayLabel(relay *RelayState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":      "zkhunt",
		"session":   relay.SessionID,
		"phase":     string(relay.Phase),
		"round":     relay.Round,
		"connected": len(relay.Presences),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(relay *RelayState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := relayLabel(relay)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}
