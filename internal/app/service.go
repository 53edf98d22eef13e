package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"zkhunt/internal/domain"
	"zkhunt/internal/ports"
	"zkhunt/internal/proof"
)

var (
	ErrNotConfigured = errors.New("hunt service not configured")
	ErrNoVerifier    = errors.New("no proof verifier configured")
)

// Deps are the collaborators a Service composes.
// Store is required; Notifier may be nil to disable notifications.
type Deps struct {
	Store       ports.SessionStore
	Verifier    ports.Verifier
	Keys        ports.KeySource
	Notifier    ports.MatchNotifier
	TotalRounds int
}

// Outcome is the result of a successful action.
type Outcome struct {
	Session *domain.Session
	Result  domain.Result
	Events  []Event
	// NotifyErr is set when the match notification failed. The action itself succeeded.
	NotifyErr error
}

// Winner returns the match winner when decided, otherwise the identity credited
// with the round the action ended.
func (o Outcome) Winner() string {
	if o.Session != nil && o.Session.Winner != "" {
		return o.Session.Winner
	}
	return o.Result.RoundWinner
}

// Service contains the hunt session use-cases.
type Service struct {
	deps Deps
	rng  domain.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(deps Deps, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.TotalRounds == 0 {
		deps.TotalRounds = domain.DefaultTotalRounds
	}
	return &Service{deps: deps, rng: &lockedRand{r: rng}}
}

// CreateGame opens a session with caller as player1 and first hunter.
func (s *Service) CreateGame(ctx context.Context, caller string) (Outcome, error) {
	if s.deps.Store == nil {
		return Outcome{}, ErrNotConfigured
	}
	id, err := s.deps.Store.NextID(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to reserve session id: %w", err)
	}
	session, err := s.rules(ctx).NewSession(id, caller, s.deps.TotalRounds)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.deps.Store.Put(ctx, session, ""); err != nil {
		return Outcome{}, fmt.Errorf("failed to save session %d: %w", id, err)
	}
	return Outcome{
		Session: session,
		Events: []Event{{
			Kind:    EventSessionCreated,
			Payload: SessionCreatedPayload{SessionID: id, Creator: caller},
		}},
	}, nil
}

// GetGame returns the current session state.
func (s *Service) GetGame(ctx context.Context, id uint64) (*domain.Session, error) {
	session, _, err := s.load(ctx, id)
	return session, err
}

// JoinGame seats caller as player2 and prey, starting the first round.
func (s *Service) JoinGame(ctx context.Context, caller string, id uint64) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.Join{})
}

// HunterMove moves the hunter one tile, catching a visible prey on arrival.
func (s *Service) HunterMove(ctx context.Context, caller string, id uint64, to domain.Coord) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.HunterMove{To: to})
}

// HunterSearch asks the hidden prey to prove it is not on the target jungle tile.
func (s *Service) HunterSearch(ctx context.Context, caller string, id uint64, target domain.Coord) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.HunterSearch{Target: target})
}

// HunterPowerSearch spends a charge to search every jungle tile around the hunter.
func (s *Service) HunterPowerSearch(ctx context.Context, caller string, id uint64) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.HunterPowerSearch{})
}

// HunterEMP spends a charge to freeze a visible prey for its next turn.
func (s *Service) HunterEMP(ctx context.Context, caller string, id uint64) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.HunterEMP{})
}

// PreyMovePublic moves the visible prey one plain tile.
func (s *Service) PreyMovePublic(ctx context.Context, caller string, id uint64, to domain.Coord) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyMove{To: to})
}

// PreyDashPublic spends a dash to move the visible prey up to two plain tiles.
func (s *Service) PreyDashPublic(ctx context.Context, caller string, id uint64, to domain.Coord) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyDash{To: to})
}

// PreyEnterJungle hides the prey behind a commitment to its jungle position.
func (s *Service) PreyEnterJungle(ctx context.Context, caller string, id uint64, commitment domain.Commitment, blob []byte) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyEnterJungle{Commitment: commitment, Proof: blob})
}

// PreyMoveJungle moves the hidden prey and replaces its commitment.
func (s *Service) PreyMoveJungle(ctx context.Context, caller string, id uint64, commitment domain.Commitment, blob []byte) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyMoveJungle{Commitment: commitment, Proof: blob})
}

// PreyExitJungle reveals the prey on a plain tile.
func (s *Service) PreyExitJungle(ctx context.Context, caller string, id uint64, to domain.Coord) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyExitJungle{To: to})
}

// PreyPassFrozen spends the prey turn lost to an EMP.
func (s *Service) PreyPassFrozen(ctx context.Context, caller string, id uint64) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.PreyPassFrozen{})
}

// RespondSearch answers a pending search. An empty blob concedes the round.
func (s *Service) RespondSearch(ctx context.Context, caller string, id uint64, blob []byte) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.RespondSearch{Proof: blob})
}

// ClaimCatch finalizes an unanswered search as a hunter win. See Outcome.Winner.
func (s *Service) ClaimCatch(ctx context.Context, caller string, id uint64) (Outcome, error) {
	return s.Execute(ctx, caller, id, domain.ClaimCatch{})
}

// Execute runs cmd for caller against session id.
// The command runs on a copy; the store only sees fully validated state.
// Side effects: persists the session and notifies on match start and end.
func (s *Service) Execute(ctx context.Context, caller string, id uint64, cmd domain.Command) (Outcome, error) {
	if s.deps.Store == nil {
		return Outcome{}, ErrNotConfigured
	}

	for attempt := 0; ; attempt++ {
		current, version, err := s.load(ctx, id)
		if err != nil {
			return Outcome{}, err
		}

		next := current.Clone()
		res, err := s.rules(ctx).Execute(next, caller, cmd)
		if err != nil {
			return Outcome{}, err
		}

		err = s.deps.Store.Put(ctx, next, version)
		if errors.Is(err, ports.ErrConflict) && attempt < maxConflictRetries {
			continue
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to save session %d: %w", id, err)
		}

		return Outcome{
			Session:   next,
			Result:    res,
			Events:    eventsFor(cmd, caller, next, res),
			NotifyErr: s.notify(ctx, next, res),
		}, nil
	}
}

func (s *Service) load(ctx context.Context, id uint64) (*domain.Session, string, error) {
	if s.deps.Store == nil {
		return nil, "", ErrNotConfigured
	}
	session, version, err := s.deps.Store.Get(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, "", fmt.Errorf("session %d: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load session %d: %w", id, err)
	}
	return session, version, nil
}

// notify is best-effort; its error is reported but never fails the action.
func (s *Service) notify(ctx context.Context, session *domain.Session, res domain.Result) error {
	if s.deps.Notifier == nil {
		return nil
	}
	var errs []error
	if res.Started {
		if err := s.deps.Notifier.OnStart(ctx, session.ID, session.Player1, session.Player2); err != nil {
			errs = append(errs, fmt.Errorf("start notification: %w", err))
		}
	}
	if res.MatchEnded {
		if err := s.deps.Notifier.OnEnd(ctx, session.ID, session.PlayerOneWonNominal()); err != nil {
			errs = append(errs, fmt.Errorf("end notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) rules(ctx context.Context) *domain.Rules {
	return domain.NewRules(s.rng, &boundVerifier{ctx: ctx, verifier: s.deps.Verifier, keys: s.deps.Keys})
}

// boundVerifier resolves the key for a proof kind and calls the verifier port.
type boundVerifier struct {
	ctx      context.Context
	verifier ports.Verifier
	keys     ports.KeySource
}

func (b *boundVerifier) VerifyProof(kind proof.Kind, blob []byte) error {
	if b.verifier == nil || b.keys == nil {
		return ErrNoVerifier
	}
	vk, err := b.keys.VerificationKey(b.ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s verification key: %w", kind, err)
	}
	return b.verifier.Verify(b.ctx, vk, blob)
}

// lockedRand serializes access to a shared *rand.Rand across concurrent RPCs.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
