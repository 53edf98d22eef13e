package nakama

import (
	"context"
	"fmt"

	"zkhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaNotificationAdapter sends persistent in-app notifications to both players.
type NakamaNotificationAdapter struct {
	nk    runtime.NakamaModule
	store ports.SessionStore
}

// NewNakamaNotificationAdapter creates a notifier. The store resolves players on match end.
func NewNakamaNotificationAdapter(nk runtime.NakamaModule, store ports.SessionStore) *NakamaNotificationAdapter {
	return &NakamaNotificationAdapter{nk: nk, store: store}
}

func (a *NakamaNotificationAdapter) OnStart(ctx context.Context, sessionID uint64, player1, player2 string) error {
	content := map[string]interface{}{
		"session_id": sessionID,
		"player1":    player1,
		"player2":    player2,
	}
	return a.send(ctx, "Match started", NotificationMatchStarted, content, player1, player2)
}

func (a *NakamaNotificationAdapter) OnEnd(ctx context.Context, sessionID uint64, player1Won bool) error {
	session, _, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("resolve players for session %d: %w", sessionID, err)
	}
	content := map[string]interface{}{
		"session_id":    sessionID,
		"player1_won":   player1Won,
		"winner":        session.Winner,
		"player1_score": session.Player1Score,
		"player2_score": session.Player2Score,
	}
	return a.send(ctx, "Match ended", NotificationMatchEnded, content, session.Player1, session.Player2)
}

func (a *NakamaNotificationAdapter) send(ctx context.Context, subject string, code int, content map[string]interface{}, userIDs ...string) error {
	notifications := make([]*runtime.NotificationSend, 0, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		notifications = append(notifications, &runtime.NotificationSend{
			UserID:     userID,
			Subject:    subject,
			Content:    content,
			Code:       code,
			Persistent: true,
		})
	}
	if len(notifications) == 0 {
		return nil
	}
	if err := a.nk.NotificationsSend(ctx, notifications); err != nil {
		return fmt.Errorf("failed to send %q notifications: %w", subject, err)
	}
	return nil
}

var _ ports.MatchNotifier = (*NakamaNotificationAdapter)(nil)
