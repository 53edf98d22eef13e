package domain

import (
	"encoding/hex"
	"fmt"
)

// Phase represents the lifecycle stage of a hunt session.
type Phase string

const (
	// PhaseWaitingForSecondPlayer is the state after creation until an opponent joins.
	PhaseWaitingForSecondPlayer Phase = "waiting_for_second_player"
	// PhaseHunterTurn is the state where the hunter acts.
	PhaseHunterTurn Phase = "hunter_turn"
	// PhasePreyTurn is the state where the prey acts.
	PhasePreyTurn Phase = "prey_turn"
	// PhaseSearchPending is the state where the prey owes a response to a search.
	PhaseSearchPending Phase = "search_pending"
	// PhaseEnded is terminal.
	PhaseEnded Phase = "ended"
)

// Role is the part a participant plays in the current round.
type Role string

const (
	RoleNone   Role = ""
	RoleHunter Role = "hunter"
	RolePrey   Role = "prey"
)

const (
	// MaxTurns is the number of prey turns the prey must survive to win a round.
	MaxTurns = 10
	// MinSpawnDistance is the minimum Manhattan distance between spawn tiles.
	MinSpawnDistance = 3
	// MaxSearchedTiles bounds a single search (power search neighbourhood).
	MaxSearchedTiles = 9

	InitialPowerSearches = 2
	InitialEMPUses       = 1
	InitialPreyDashes    = 2

	// DefaultTotalRounds gives each player one round per side.
	DefaultTotalRounds = 2
)

// Coord is a tile position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the coordinate lies on the grid.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Manhattan returns |dx|+|dy|.
func (c Coord) Manhattan(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Chebyshev returns max(|dx|,|dy|).
func (c Coord) Chebyshev(o Coord) int {
	dx, dy := abs(c.X-o.X), abs(c.Y-o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Commitment is the opaque 32-byte value standing in for a hidden prey position.
type Commitment [32]byte

// IsZero reports whether no commitment is held.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

func (c Commitment) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(c[:])), nil
}

func (c *Commitment) UnmarshalText(text []byte) error {
	parsed, err := ParseCommitment(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCommitment decodes a 64 character hex string, with or without a 0x prefix.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("commitment: %w", err)
	}
	if len(raw) != len(c) {
		return c, fmt.Errorf("commitment: want %d bytes, got %d", len(c), len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// Session holds the authoritative state of one match.
//
// Player1 and Player2 never change once bound; Hunter and Prey are role bindings
// drawn from them and swap once per match.
type Session struct {
	ID uint64 `json:"id"`

	Hunter  string `json:"hunter"`
	Prey    string `json:"prey"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`

	HunterPos      Coord      `json:"hunter_pos"`
	PreyPos        Coord      `json:"prey_pos"` // last public position, stale while hidden
	PreyHidden     bool       `json:"prey_is_hidden"`
	PreyCommitment Commitment `json:"prey_commitment"`

	Phase Phase `json:"phase"`

	TurnNumber             int     `json:"turn_number"`
	PowerSearchesRemaining int     `json:"power_searches_remaining"`
	EMPUsesRemaining       int     `json:"emp_uses_remaining"`
	PreyDashRemaining      int     `json:"prey_dash_remaining"`
	PreyFrozen             bool    `json:"prey_is_frozen"`
	SearchedTiles          []Coord `json:"searched_tiles"`

	Round        int    `json:"round"`
	TotalRounds  int    `json:"total_rounds"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
	Winner       string `json:"winner,omitempty"`

	MapIndex int `json:"map_index"`
}

// Clone returns a deep copy so a failed action can be discarded without side effects.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.SearchedTiles != nil {
		out.SearchedTiles = append([]Coord(nil), s.SearchedTiles...)
	}
	return &out
}

// RoleOf returns the current role of userID, or RoleNone for outsiders.
func (s *Session) RoleOf(userID string) Role {
	switch {
	case userID == "":
		return RoleNone
	case userID == s.Hunter:
		return RoleHunter
	case userID == s.Prey:
		return RolePrey
	default:
		return RoleNone
	}
}

// IsParticipant reports whether userID is one of the two fixed identities.
func (s *Session) IsParticipant(userID string) bool {
	return userID != "" && (userID == s.Player1 || userID == s.Player2)
}

// PlayerOneWonNominal is the outcome reported to external rankings when the match ends.
// A tie is reported as a player1 win while Winner stays empty.
func (s *Session) PlayerOneWonNominal() bool {
	return s.Player1Score >= s.Player2Score
}
