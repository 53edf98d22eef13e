package nakama

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type storedObject struct {
	value   string
	version int
}

type signalCall struct {
	matchID string
	data    string
}

type createdMatch struct {
	id     string
	module string
	params map[string]interface{}
}

// fakeNakama implements the storage, notification and match calls used by the adapters.
// Any other NakamaModule method panics through the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	mu            sync.Mutex
	objects       map[string]storedObject
	notifications []*runtime.NotificationSend
	matches       []createdMatch
	signals       []signalCall
	writeErr      error
	notifyErr     error
	createErr     error
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: make(map[string]storedObject)}
}

func objectID(collection, key, userID string) string {
	return collection + "/" + key + "/" + userID
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		obj, ok := f.objects[objectID(r.Collection, r.Key, r.UserID)]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			UserId:     r.UserID,
			Value:      obj.value,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return out, nil
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		id := objectID(w.Collection, w.Key, w.UserID)
		current, exists := f.objects[id]
		switch {
		case w.Version == "*" && exists:
			return nil, runtime.ErrStorageRejectedVersion
		case w.Version != "" && w.Version != "*" && (!exists || strconv.Itoa(current.version) != w.Version):
			return nil, runtime.ErrStorageRejectedVersion
		}
		next := storedObject{value: w.Value, version: current.version + 1}
		f.objects[id] = next
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, Version: strconv.Itoa(next.version)})
	}
	return acks, nil
}

func (f *fakeNakama) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range deletes {
		id := objectID(d.Collection, d.Key, d.UserID)
		current, exists := f.objects[id]
		if !exists {
			continue
		}
		if d.Version != "" && strconv.Itoa(current.version) != d.Version {
			return runtime.ErrStorageRejectedVersion
		}
		delete(f.objects, id)
	}
	return nil
}

func (f *fakeNakama) NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notifications = append(f.notifications, notifications...)
	return nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("match-%d.node", len(f.matches)+1)
	f.matches = append(f.matches, createdMatch{id: id, module: module, params: params})
	return id, nil
}

// MatchList answers "+label.session:N" queries from the created matches.
func (f *fakeNakama) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.Match
	for _, m := range f.matches {
		if query != "+label.session:"+m.params["session_id"].(string) {
			continue
		}
		out = append(out, &api.Match{MatchId: m.id, Authoritative: true, Label: wrapperspb.String(m.params["session_id"].(string))})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNakama) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, signalCall{matchID: id, data: data})
	return "ok", nil
}

// stopRelays drops every relay match, as the idle shutdown does.
func (f *fakeNakama) stopRelays() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = nil
}

// fakePresence overrides the presence fields the relay reads.
type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string    { return p.userID }
func (p fakePresence) GetSessionId() string { return "session-" + p.userID }
func (p fakePresence) GetUsername() string  { return p.userID }

type broadcast struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcasts []broadcast
	labels     []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) lastLabel() string {
	if len(md.labels) == 0 {
		return ""
	}
	return md.labels[len(md.labels)-1]
}
