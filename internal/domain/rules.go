package domain

import (
	"fmt"

	"zkhunt/internal/proof"
)

// ProofVerifier checks a proof blob against the verification key of its kind.
type ProofVerifier interface {
	VerifyProof(kind proof.Kind, blob []byte) error
}

// Result describes what an executed command changed beyond the session fields.
type Result struct {
	Started        bool // the second player joined and the first round began
	RoundEnded     bool
	HunterWonRound bool
	RoundWinner    string // fixed identity credited with the round
	RolesSwapped   bool
	MatchEnded     bool
}

// Rules executes commands against a session.
// Every command validates completely before it writes anything.
type Rules struct {
	rng      Rand
	verifier ProofVerifier
}

// NewRules builds Rules with the randomness and verifier capabilities.
func NewRules(rng Rand, verifier ProofVerifier) *Rules {
	return &Rules{rng: rng, verifier: verifier}
}

// Execute authorizes caller for cmd and applies it to s.
func (r *Rules) Execute(s *Session, caller string, cmd Command) (Result, error) {
	if s == nil {
		return Result{}, ErrSessionNotFound
	}
	if err := authorize(s, caller, cmd.Requirement()); err != nil {
		return Result{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	var res Result
	if err := cmd.apply(r, s, caller, &res); err != nil {
		return Result{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return res, nil
}

func authorize(s *Session, caller string, req Requirement) error {
	if s.Phase == PhaseEnded {
		return ErrGameAlreadyEnded
	}
	if s.Phase != req.Phase {
		if s.Phase == PhaseSearchPending {
			return ErrSearchPending
		}
		return ErrWrongPhase
	}

	switch req.Role {
	case RoleNone:
		if caller == "" {
			return ErrNotPlayer
		}
		if s.IsParticipant(caller) {
			return ErrAlreadyParticipant
		}
	case RoleHunter:
		if caller == "" || caller != s.Hunter {
			if !s.IsParticipant(caller) {
				return ErrNotPlayer
			}
			return ErrNotHunter
		}
	case RolePrey:
		if caller == "" || caller != s.Prey {
			if !s.IsParticipant(caller) {
				return ErrNotPlayer
			}
			return ErrNotPrey
		}
	}
	return nil
}

func (r *Rules) verify(kind proof.Kind, blob []byte, bind func() error) error {
	if err := bind(); err != nil {
		return fmt.Errorf("%w: %w", ErrProofFailed, err)
	}
	if r.verifier == nil {
		return fmt.Errorf("%w: no verifier", ErrProofFailed)
	}
	if err := r.verifier.VerifyProof(kind, blob); err != nil {
		return fmt.Errorf("%w: %w", ErrProofFailed, err)
	}
	return nil
}

// advanceTurn ends the prey's turn. Surviving past MaxTurns wins the round.
func (r *Rules) advanceTurn(s *Session, res *Result) {
	s.TurnNumber++
	if s.TurnNumber > MaxTurns {
		r.endRound(s, false, res)
		return
	}
	s.Phase = PhaseHunterTurn
}

func (Join) apply(r *Rules, s *Session, caller string, res *Result) error {
	s.Prey = caller
	s.Player2 = caller
	s.Phase = PhaseHunterTurn
	s.TurnNumber = 1
	res.Started = true
	return nil
}

func (c HunterMove) apply(r *Rules, s *Session, _ string, res *Result) error {
	if !c.To.InBounds() {
		return ErrOutOfBounds
	}
	if s.HunterPos.Manhattan(c.To) > 1 {
		return ErrInvalidMove
	}

	s.HunterPos = c.To
	if !s.PreyHidden && c.To == s.PreyPos {
		r.endRound(s, true, res)
		return nil
	}
	s.Phase = PhasePreyTurn
	return nil
}

func (c HunterSearch) apply(r *Rules, s *Session, _ string, _ *Result) error {
	if !s.PreyHidden {
		return ErrPreyNotHidden
	}
	if !c.Target.InBounds() {
		return ErrOutOfBounds
	}
	if s.HunterPos.Chebyshev(c.Target) > 1 {
		return ErrInvalidMove
	}
	if !IsJungle(s.MapIndex, c.Target) {
		return ErrNotJungle
	}

	s.SearchedTiles = []Coord{c.Target}
	s.Phase = PhaseSearchPending
	return nil
}

// powerSearchOffsets is the fixed scan order shared with provers: center, left,
// right, up (y-1), down (y+1), then the diagonals of the left column before the
// right column, each top first.
var powerSearchOffsets = [MaxSearchedTiles]Coord{
	{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// PowerSearchTiles returns the in-bounds jungle tiles around center in scan order.
func PowerSearchTiles(mapIndex int, center Coord) []Coord {
	tiles := make([]Coord, 0, MaxSearchedTiles)
	for _, off := range powerSearchOffsets {
		c := Coord{X: center.X + off.X, Y: center.Y + off.Y}
		if IsJungle(mapIndex, c) {
			tiles = append(tiles, c)
		}
	}
	return tiles
}

func (HunterPowerSearch) apply(r *Rules, s *Session, _ string, _ *Result) error {
	if !s.PreyHidden {
		return ErrPreyNotHidden
	}
	if s.PowerSearchesRemaining <= 0 {
		return ErrNoPowerSearches
	}

	s.PowerSearchesRemaining--
	s.SearchedTiles = PowerSearchTiles(s.MapIndex, s.HunterPos)
	s.Phase = PhaseSearchPending
	return nil
}

func (HunterEMP) apply(r *Rules, s *Session, _ string, _ *Result) error {
	if s.EMPUsesRemaining <= 0 {
		return ErrNoEMP
	}
	if s.PreyHidden {
		return ErrEMPTargetHidden
	}

	s.EMPUsesRemaining--
	s.PreyFrozen = true
	return nil
}

// checkPublicDestination validates a prey move onto open ground within radius of
// the last public position.
func checkPublicDestination(s *Session, to Coord, radius int) error {
	if !to.InBounds() {
		return ErrOutOfBounds
	}
	if IsJungle(s.MapIndex, to) {
		return ErrIsJungle
	}
	if s.PreyPos.Manhattan(to) > radius {
		return ErrInvalidMove
	}
	return nil
}

func reveal(s *Session, at Coord) {
	s.PreyPos = at
	s.PreyHidden = false
	s.PreyCommitment = Commitment{}
}

func (c PreyMove) apply(r *Rules, s *Session, _ string, res *Result) error {
	if s.PreyFrozen {
		return ErrPreyFrozen
	}
	if err := checkPublicDestination(s, c.To, 1); err != nil {
		return err
	}

	reveal(s, c.To)
	r.advanceTurn(s, res)
	return nil
}

func (c PreyDash) apply(r *Rules, s *Session, _ string, res *Result) error {
	if s.PreyFrozen {
		return ErrPreyFrozen
	}
	if s.PreyDashRemaining <= 0 {
		return ErrNoDashes
	}
	if err := checkPublicDestination(s, c.To, 2); err != nil {
		return err
	}

	s.PreyDashRemaining--
	reveal(s, c.To)
	r.advanceTurn(s, res)
	return nil
}

func (c PreyEnterJungle) apply(r *Rules, s *Session, _ string, res *Result) error {
	if s.PreyFrozen {
		return ErrPreyFrozen
	}
	if s.PreyHidden {
		return ErrPreyAlreadyHidden
	}
	err := r.verify(proof.KindJungleMove, c.Proof, func() error {
		return proof.BindEnterJungle(c.Proof, c.Commitment, s.MapIndex)
	})
	if err != nil {
		return err
	}

	s.PreyCommitment = c.Commitment
	s.PreyHidden = true
	r.advanceTurn(s, res)
	return nil
}

func (c PreyMoveJungle) apply(r *Rules, s *Session, _ string, res *Result) error {
	if s.PreyFrozen {
		return ErrPreyFrozen
	}
	if !s.PreyHidden {
		return ErrPreyNotHidden
	}
	err := r.verify(proof.KindJungleMove, c.Proof, func() error {
		return proof.BindJungleMove(c.Proof, s.PreyCommitment, c.Commitment, s.MapIndex)
	})
	if err != nil {
		return err
	}

	s.PreyCommitment = c.Commitment
	r.advanceTurn(s, res)
	return nil
}

func (c PreyExitJungle) apply(r *Rules, s *Session, _ string, res *Result) error {
	if s.PreyFrozen {
		return ErrPreyFrozen
	}
	if !s.PreyHidden {
		return ErrPreyNotHidden
	}
	if !c.To.InBounds() {
		return ErrOutOfBounds
	}
	if IsJungle(s.MapIndex, c.To) {
		return ErrIsJungle
	}

	reveal(s, c.To)
	r.advanceTurn(s, res)
	return nil
}

func (PreyPassFrozen) apply(r *Rules, s *Session, _ string, res *Result) error {
	if !s.PreyFrozen {
		return ErrPreyNotFrozen
	}

	s.PreyFrozen = false
	r.advanceTurn(s, res)
	return nil
}

func (c RespondSearch) apply(r *Rules, s *Session, _ string, res *Result) error {
	if len(c.Proof) == 0 {
		s.SearchedTiles = nil
		r.endRound(s, true, res)
		return nil
	}

	tiles := make([]proof.Tile, len(s.SearchedTiles))
	for i, t := range s.SearchedTiles {
		tiles[i] = proof.Tile{X: t.X, Y: t.Y}
	}
	err := r.verify(proof.KindSearchResponse, c.Proof, func() error {
		return proof.BindSearchResponse(c.Proof, s.PreyCommitment, tiles)
	})
	if err != nil {
		return err
	}

	// Answering a search does not cost the prey a turn.
	s.SearchedTiles = nil
	s.Phase = PhasePreyTurn
	return nil
}

func (ClaimCatch) apply(r *Rules, s *Session, _ string, res *Result) error {
	r.endRound(s, true, res)
	return nil
}
