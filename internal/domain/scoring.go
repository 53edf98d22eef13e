package domain

// ValidateTotalRounds accepts even round counts of at least two, so the single
// role swap splits the match evenly.
func ValidateTotalRounds(total int) error {
	if total < 2 || total%2 != 0 {
		return ErrInvalidRoundCount
	}
	return nil
}

// NewSession creates a session waiting for a second player. The creator hunts first.
func (r *Rules) NewSession(id uint64, creator string, totalRounds int) (*Session, error) {
	if creator == "" {
		return nil, ErrNotPlayer
	}
	if err := ValidateTotalRounds(totalRounds); err != nil {
		return nil, err
	}
	s := &Session{
		ID:          id,
		Hunter:      creator,
		Player1:     creator,
		Round:       1,
		TotalRounds: totalRounds,
	}
	r.resetRound(s)
	s.TurnNumber = 0
	s.Phase = PhaseWaitingForSecondPlayer
	return s, nil
}

// endRound credits the fixed identity that holds the winning role, then either
// finalizes the match or arms the next round.
func (r *Rules) endRound(s *Session, hunterWon bool, res *Result) {
	winner := s.Prey
	if hunterWon {
		winner = s.Hunter
	}
	if winner == s.Player1 {
		s.Player1Score++
	} else {
		s.Player2Score++
	}

	res.RoundEnded = true
	res.HunterWonRound = hunterWon
	res.RoundWinner = winner
	s.SearchedTiles = nil

	if s.Round >= s.TotalRounds {
		s.Phase = PhaseEnded
		switch {
		case s.Player1Score > s.Player2Score:
			s.Winner = s.Player1
		case s.Player2Score > s.Player1Score:
			s.Winner = s.Player2
		default:
			s.Winner = ""
		}
		res.MatchEnded = true
		return
	}

	s.Round++
	if s.Round == s.TotalRounds/2+1 {
		s.Hunter, s.Prey = s.Prey, s.Hunter
		res.RolesSwapped = true
	}
	r.resetRound(s)
}

// resetRound draws a new map and spawns and restores every per-round counter.
func (r *Rules) resetRound(s *Session) {
	s.MapIndex = SelectMap(r.rng)
	s.HunterPos, s.PreyPos = SelectSpawns(s.MapIndex, r.rng)
	s.PreyHidden = false
	s.PreyCommitment = Commitment{}
	s.TurnNumber = 1
	s.PowerSearchesRemaining = InitialPowerSearches
	s.EMPUsesRemaining = InitialEMPUses
	s.PreyDashRemaining = InitialPreyDashes
	s.PreyFrozen = false
	s.SearchedTiles = nil
	s.Phase = PhaseHunterTurn
}
