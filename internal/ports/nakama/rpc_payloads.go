package nakama

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"zkhunt/internal/app"
	"zkhunt/internal/domain"
)

var errBadRequest = errors.New("bad request")

// actionRequest is the JSON payload shared by every session RPC.
// Fields an action does not use are ignored.
type actionRequest struct {
	SessionID  uint64 `json:"session_id"`
	X          *int   `json:"x,omitempty"`
	Y          *int   `json:"y,omitempty"`
	Commitment string `json:"commitment,omitempty"` // hex, optional 0x prefix
	Proof      string `json:"proof,omitempty"`      // hex, optional 0x prefix
}

func (r actionRequest) coord() (domain.Coord, error) {
	if r.X == nil || r.Y == nil {
		return domain.Coord{}, fmt.Errorf("%w: x and y are required", errBadRequest)
	}
	return domain.Coord{X: *r.X, Y: *r.Y}, nil
}

func (r actionRequest) commitment() (domain.Commitment, error) {
	c, err := domain.ParseCommitment(r.Commitment)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return c, nil
}

// proofBlob decodes the proof field. An empty field yields an empty blob.
func (r actionRequest) proofBlob() ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(r.Proof, "0x"), "0X")
	blob, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: proof: %w", errBadRequest, err)
	}
	return blob, nil
}

// sessionView is the public form of a session sent to clients.
type sessionView struct {
	*domain.Session
	// PreyPositionStale marks prey_pos as the last public position while the prey hides.
	PreyPositionStale bool `json:"prey_position_stale"`
	// MapCells is the current map as 64 cells indexed y*8+x, 1 marking jungle.
	MapCells []int `json:"map_cells"`
}

func newSessionView(s *domain.Session) sessionView {
	view := sessionView{Session: s}
	if s == nil {
		return view
	}
	view.PreyPositionStale = s.PreyHidden
	if cells, err := domain.Cells(s.MapIndex); err == nil {
		view.MapCells = make([]int, len(cells))
		for i, c := range cells {
			view.MapCells[i] = int(c)
		}
	}
	return view
}

type sessionResponse struct {
	Session sessionView `json:"session"`
	MatchID string      `json:"match_id,omitempty"`
}

type actionResponse struct {
	Session     sessionView `json:"session"`
	MatchID     string      `json:"match_id,omitempty"`
	RoundEnded  bool        `json:"round_ended"`
	RoundWinner string      `json:"round_winner,omitempty"`
	MatchEnded  bool        `json:"match_ended"`
	Winner      string      `json:"winner,omitempty"`
}

func newActionResponse(out app.Outcome, matchID string) actionResponse {
	return actionResponse{
		Session:     newSessionView(out.Session),
		MatchID:     matchID,
		RoundEnded:  out.Result.RoundEnded,
		RoundWinner: out.Result.RoundWinner,
		MatchEnded:  out.Result.MatchEnded,
		Winner:      out.Winner(),
	}
}
