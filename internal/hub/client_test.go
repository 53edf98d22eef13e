package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

type capturedRequest struct {
	auth        string
	idempotency string
	body        map[string]any
}

type fakeHub struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
}

func (f *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		auth:        r.Header.Get("Authorization"),
		idempotency: r.Header.Get("Idempotency-Key"),
		body:        body,
	})
	status := f.status
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusAccepted
	}
	w.WriteHeader(status)
}

func (f *fakeHub) all() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, hub *fakeHub) *Client {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return NewClient(Options{URL: srv.URL, Secret: "hub-secret", Issuer: "zkhunt-test", Timeout: time.Second})
}

func parseClaims(t *testing.T, header, secret string) jwt.MapClaims {
	t.Helper()
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		t.Fatalf("authorization header %q is not a bearer token", header)
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		t.Fatal("token claims invalid")
	}
	return claims
}

func TestOnStartPostsSignedEvent(t *testing.T) {
	hub := &fakeHub{}
	c := newTestClient(t, hub)

	if err := c.OnStart(context.Background(), 42, "alice", "bob"); err != nil {
		t.Fatalf("OnStart error: %v", err)
	}
	reqs := hub.all()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]

	claims := parseClaims(t, req.auth, "hub-secret")
	if claims["iss"] != "zkhunt-test" {
		t.Errorf("iss = %v", claims["iss"])
	}
	if claims["sub"] != "session:42" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if _, ok := claims["jti"].(string); !ok {
		t.Error("jti claim missing")
	}

	if req.body["event"] != EventMatchStarted || req.body["player1"] != "alice" || req.body["player2"] != "bob" {
		t.Errorf("unexpected body: %v", req.body)
	}
	if req.body["session_id"] != float64(42) {
		t.Errorf("session_id = %v", req.body["session_id"])
	}
	if req.idempotency != IdempotencyKey(EventMatchStarted, 42) {
		t.Errorf("idempotency key = %q", req.idempotency)
	}
}

func TestOnEndReportsPlayerOneResult(t *testing.T) {
	hub := &fakeHub{}
	c := newTestClient(t, hub)

	if err := c.OnEnd(context.Background(), 7, false); err != nil {
		t.Fatalf("OnEnd error: %v", err)
	}
	body := hub.all()[0].body
	if body["event"] != EventMatchEnded || body["player1_won"] != false {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestWrongSecretFailsVerification(t *testing.T) {
	hub := &fakeHub{}
	c := newTestClient(t, hub)
	if err := c.OnEnd(context.Background(), 1, true); err != nil {
		t.Fatalf("OnEnd error: %v", err)
	}
	raw := strings.TrimPrefix(hub.all()[0].auth, "Bearer ")
	_, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("other"), nil })
	if err == nil {
		t.Fatal("expected signature error with the wrong secret")
	}
}

func TestNonSuccessStatusIsError(t *testing.T) {
	hub := &fakeHub{status: http.StatusServiceUnavailable}
	c := newTestClient(t, hub)

	err := c.OnStart(context.Background(), 3, "a", "b")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestUnconfiguredClientIsNoop(t *testing.T) {
	c := NewClient(Options{})
	if err := c.OnStart(context.Background(), 1, "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.OnEnd(context.Background(), 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdempotencyKeyIsStablePerEvent(t *testing.T) {
	if IdempotencyKey(EventMatchEnded, 9) != IdempotencyKey(EventMatchEnded, 9) {
		t.Fatal("key must be deterministic")
	}
	if IdempotencyKey(EventMatchEnded, 9) == IdempotencyKey(EventMatchStarted, 9) {
		t.Fatal("start and end must not share a key")
	}
	if IdempotencyKey(EventMatchEnded, 9) == IdempotencyKey(EventMatchEnded, 10) {
		t.Fatal("sessions must not share a key")
	}
}
