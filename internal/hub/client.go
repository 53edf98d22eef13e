// Package hub reports match start and end to the external ranking service.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"

	"zkhunt/internal/ports"
)

const (
	EventMatchStarted = "match_started"
	EventMatchEnded   = "match_ended"

	tokenTTL = 5 * time.Minute
)

var ErrUnexpectedStatus = errors.New("unexpected hub status")

// idempotencyNamespace scopes the deterministic idempotency keys.
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("zkhunt/hub"))

type Options struct {
	URL     string
	Secret  string
	Issuer  string
	Timeout time.Duration
}

// Client posts match events with an HS256 bearer token.
// A client without a URL accepts every event without sending it.
type Client struct {
	opts Options
	http *http.Client
	now  func() time.Time
}

var _ ports.MatchNotifier = (*Client)(nil)

func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
		now:  time.Now,
	}
}

type startRequest struct {
	Event     string `json:"event"`
	SessionID uint64 `json:"session_id"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
}

type endRequest struct {
	Event      string `json:"event"`
	SessionID  uint64 `json:"session_id"`
	Player1Won bool   `json:"player1_won"`
}

func (c *Client) OnStart(ctx context.Context, sessionID uint64, player1, player2 string) error {
	return c.post(ctx, EventMatchStarted, sessionID, startRequest{
		Event:     EventMatchStarted,
		SessionID: sessionID,
		Player1:   player1,
		Player2:   player2,
	})
}

func (c *Client) OnEnd(ctx context.Context, sessionID uint64, player1Won bool) error {
	return c.post(ctx, EventMatchEnded, sessionID, endRequest{
		Event:      EventMatchEnded,
		SessionID:  sessionID,
		Player1Won: player1Won,
	})
}

func (c *Client) post(ctx context.Context, event string, sessionID uint64, body any) error {
	if c.opts.URL == "" {
		return nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	token, err := c.token(sessionID)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", event, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", IdempotencyKey(event, sessionID))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s for session %d: %w", event, sessionID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s for session %d returned %d", ErrUnexpectedStatus, event, sessionID, resp.StatusCode)
	}
	return nil
}

func (c *Client) token(sessionID uint64) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": c.opts.Issuer,
		"sub": "session:" + strconv.FormatUint(sessionID, 10),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"jti": uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.opts.Secret))
	if err != nil {
		return "", fmt.Errorf("sign hub token: %w", err)
	}
	return signed, nil
}

// IdempotencyKey is stable per event and session so redelivery is harmless.
func IdempotencyKey(event string, sessionID uint64) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte(event+":"+strconv.FormatUint(sessionID, 10))).String()
}
