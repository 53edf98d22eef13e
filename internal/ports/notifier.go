package ports

import (
	"context"
	"errors"
)

// MatchNotifier tells external systems that a match started or finished.
// Calls are best-effort: callers log failures and carry on.
type MatchNotifier interface {
	// OnStart is called once the second player has joined.
	OnStart(ctx context.Context, sessionID uint64, player1, player2 string) error

	// OnEnd is called when the match is finalized. player1Won is true on a draw.
	OnEnd(ctx context.Context, sessionID uint64, player1Won bool) error
}

// MultiNotifier fans a notification out to every configured notifier.
// Nil entries are skipped; errors from all notifiers are joined.
type MultiNotifier []MatchNotifier

func (m MultiNotifier) OnStart(ctx context.Context, sessionID uint64, player1, player2 string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.OnStart(ctx, sessionID, player1, player2); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) OnEnd(ctx context.Context, sessionID uint64, player1Won bool) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.OnEnd(ctx, sessionID, player1Won); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ MatchNotifier = MultiNotifier(nil)
