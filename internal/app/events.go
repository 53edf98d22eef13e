package app

import "zkhunt/internal/domain"

// EventKind identifies emitted events for realtime dispatch.
type EventKind string

const (
	EventSessionCreated  EventKind = "session_created"
	EventPlayerJoined    EventKind = "player_joined"
	EventActionApplied   EventKind = "action_applied"
	EventSearchRequested EventKind = "search_requested"
	EventRoundEnded      EventKind = "round_ended"
	EventMatchEnded      EventKind = "match_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type SessionCreatedPayload struct {
	SessionID uint64 `json:"session_id"`
	Creator   string `json:"creator"`
}

type PlayerJoinedPayload struct {
	SessionID uint64 `json:"session_id"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
}

type ActionAppliedPayload struct {
	SessionID uint64       `json:"session_id"`
	Action    string       `json:"action"`
	Actor     string       `json:"actor"`
	Phase     domain.Phase `json:"phase"`
	Turn      int          `json:"turn"`
}

type SearchRequestedPayload struct {
	SessionID uint64         `json:"session_id"`
	Tiles     []domain.Coord `json:"tiles"`
}

type RoundEndedPayload struct {
	SessionID    uint64 `json:"session_id"`
	Round        int    `json:"round"` // round that just ended
	Winner       string `json:"winner"`
	HunterWon    bool   `json:"hunter_won"`
	RolesSwapped bool   `json:"roles_swapped"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
}

type MatchEndedPayload struct {
	SessionID    uint64 `json:"session_id"`
	Winner       string `json:"winner"` // empty on a draw
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
}

// eventsFor derives the events produced by one applied command.
func eventsFor(cmd domain.Command, actor string, s *domain.Session, res domain.Result) []Event {
	events := make([]Event, 0, 3)

	if res.Started {
		events = append(events, Event{
			Kind:    EventPlayerJoined,
			Payload: PlayerJoinedPayload{SessionID: s.ID, Player1: s.Player1, Player2: s.Player2},
		})
	} else {
		events = append(events, Event{
			Kind: EventActionApplied,
			Payload: ActionAppliedPayload{
				SessionID: s.ID,
				Action:    cmd.Name(),
				Actor:     actor,
				Phase:     s.Phase,
				Turn:      s.TurnNumber,
			},
		})
	}

	if s.Phase == domain.PhaseSearchPending {
		events = append(events, Event{
			Kind:       EventSearchRequested,
			Payload:    SearchRequestedPayload{SessionID: s.ID, Tiles: append([]domain.Coord(nil), s.SearchedTiles...)},
			Recipients: []string{s.Prey},
		})
	}

	if res.RoundEnded {
		round := s.Round
		if !res.MatchEnded {
			round--
		}
		events = append(events, Event{
			Kind: EventRoundEnded,
			Payload: RoundEndedPayload{
				SessionID:    s.ID,
				Round:        round,
				Winner:       res.RoundWinner,
				HunterWon:    res.HunterWonRound,
				RolesSwapped: res.RolesSwapped,
				Player1Score: s.Player1Score,
				Player2Score: s.Player2Score,
			},
		})
	}

	if res.MatchEnded {
		events = append(events, Event{
			Kind: EventMatchEnded,
			Payload: MatchEndedPayload{
				SessionID:    s.ID,
				Winner:       s.Winner,
				Player1Score: s.Player1Score,
				Player2Score: s.Player2Score,
			},
		})
	}
	return events
}
