package domain

import "errors"

// ErrorKind groups rejections so transports can map them without knowing every sentinel.
type ErrorKind string

const (
	KindLifecycle   ErrorKind = "lifecycle"
	KindSpatial     ErrorKind = "spatial"
	KindResource    ErrorKind = "resource"
	KindHiddenState ErrorKind = "hidden_state"
	KindProof       ErrorKind = "proof"
	KindUnknown     ErrorKind = "unknown"
)

// Lifecycle errors.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrWrongPhase         = errors.New("action not allowed in current phase")
	ErrNotPlayer          = errors.New("caller is not a participant")
	ErrNotHunter          = errors.New("caller is not the hunter")
	ErrNotPrey            = errors.New("caller is not the prey")
	ErrGameAlreadyEnded   = errors.New("game already ended")
	ErrAlreadyParticipant = errors.New("caller already participates in this session")
	ErrInvalidRoundCount  = errors.New("total rounds must be even and at least 2")
)

// Spatial errors.
var (
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	ErrInvalidMove = errors.New("move exceeds allowed distance")
	ErrNotJungle   = errors.New("target is not jungle")
	ErrIsJungle    = errors.New("target is jungle")
	ErrUnknownMap  = errors.New("unknown map")
)

// Resource errors.
var (
	ErrNoPowerSearches = errors.New("no power searches remaining")
	ErrNoEMP           = errors.New("no emp uses remaining")
	ErrNoDashes        = errors.New("no dashes remaining")
	ErrSearchPending   = errors.New("a search is pending")
)

// Hidden-state errors.
var (
	ErrPreyNotHidden     = errors.New("prey is not hidden")
	ErrPreyAlreadyHidden = errors.New("prey is already hidden")
	ErrEMPTargetHidden   = errors.New("emp target is hidden")
	ErrPreyFrozen        = errors.New("prey is frozen")
	ErrPreyNotFrozen     = errors.New("prey is not frozen")
)

// Proof errors. Binding mismatches and verifier rejections both wrap ErrProofFailed.
var (
	ErrProofFailed = errors.New("proof rejected")
)

type errorInfo struct {
	err  error
	kind ErrorKind
	code int
}

// errorTable assigns each sentinel a kind and a stable numeric code for clients.
var errorTable = []errorInfo{
	{ErrSessionNotFound, KindLifecycle, 1},
	{ErrNotPlayer, KindLifecycle, 2},
	{ErrWrongPhase, KindLifecycle, 3},
	{ErrNotHunter, KindLifecycle, 4},
	{ErrNotPrey, KindLifecycle, 5},
	{ErrOutOfBounds, KindSpatial, 6},
	{ErrInvalidMove, KindSpatial, 7},
	{ErrNotJungle, KindSpatial, 8},
	{ErrProofFailed, KindProof, 9},
	{ErrGameAlreadyEnded, KindLifecycle, 10},
	{ErrSearchPending, KindResource, 12},
	{ErrNoPowerSearches, KindResource, 13},
	{ErrPreyNotHidden, KindHiddenState, 14},
	{ErrPreyAlreadyHidden, KindHiddenState, 15},
	{ErrIsJungle, KindSpatial, 16},
	{ErrNoEMP, KindResource, 17},
	{ErrEMPTargetHidden, KindHiddenState, 18},
	{ErrNoDashes, KindResource, 20},
	{ErrPreyFrozen, KindHiddenState, 21},
	{ErrPreyNotFrozen, KindHiddenState, 22},
	{ErrAlreadyParticipant, KindLifecycle, 23},
	{ErrInvalidRoundCount, KindLifecycle, 24},
	{ErrUnknownMap, KindSpatial, 25},
}

func lookup(err error) (errorInfo, bool) {
	if err == nil {
		return errorInfo{}, false
	}
	for _, info := range errorTable {
		if errors.Is(err, info.err) {
			return info, true
		}
	}
	return errorInfo{}, false
}

// KindOf classifies err. Errors outside the game taxonomy report KindUnknown.
func KindOf(err error) ErrorKind {
	if info, ok := lookup(err); ok {
		return info.kind
	}
	return KindUnknown
}

// CodeOf returns the numeric code of a game error, or 0.
func CodeOf(err error) int {
	if info, ok := lookup(err); ok {
		return info.code
	}
	return 0
}
