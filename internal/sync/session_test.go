package sync

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"go-bakery-ws/internal/feed"

	"github.com/google/uuid"
)

type scriptedStream struct {
	ch   chan feed.Event
	once stdsync.Once
}

func newScriptedStream() *scriptedStream {
	return &scriptedStream{ch: make(chan feed.Event, 16)}
}

func (s *scriptedStream) Events() <-chan feed.Event { return s.ch }
func (s *scriptedStream) Err() error                { return nil }
func (s *scriptedStream) Close()                    { s.once.Do(func() { close(s.ch) }) }

// lose simulates transport failure by ending the event channel.
func (s *scriptedStream) lose() { s.Close() }

type scriptedTransport struct {
	mu      stdsync.Mutex
	streams []*scriptedStream
	served  int
}

func (t *scriptedTransport) Subscribe(ctx context.Context, table string) (EventStream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.served >= len(t.streams) {
		// keep the session parked on an idle stream
		s := newScriptedStream()
		t.streams = append(t.streams, s)
	}
	s := t.streams[t.served]
	t.served++
	return s, nil
}

func (t *scriptedTransport) subscribeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.served
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSessionSyncsAndAppliesEvents(t *testing.T) {
	stream := newScriptedStream()
	transport := &scriptedTransport{streams: []*scriptedStream{stream}}

	seed := uuid.New()
	fetch := func(ctx context.Context) (map[uuid.UUID]Row, error) {
		return map[uuid.UUID]Row{seed: {"name": "flour", "current_stock": 100}}, nil
	}

	cache := NewCache()
	sess := NewSession("ingredients", cache, transport, fetch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	waitFor(t, func() bool { return sess.State() == StateSynced }, "session never reached synced")
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1 from initial fetch", cache.Len())
	}

	ev := feed.NewEvent("ingredients", feed.ActionUpdate, seed, map[string]interface{}{"current_stock": 70})
	ev.Version = 1
	stream.ch <- ev

	waitFor(t, func() bool {
		row, ok := cache.Get(seed)
		return ok && row["current_stock"] == float64(70)
	}, "update event never applied")

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if sess.State() != StateDisconnected {
		t.Errorf("state = %s, want disconnected", sess.State())
	}
}

// Losing the transport must trigger a resubscribe with a full refetch: the
// feed has no replay, so changes made during the gap only arrive via the new
// snapshot.
func TestSessionRefetchesAfterTransportLoss(t *testing.T) {
	first := newScriptedStream()
	second := newScriptedStream()
	transport := &scriptedTransport{streams: []*scriptedStream{first, second}}

	id := uuid.New()
	var fetchMu stdsync.Mutex
	stock := 100
	fetches := 0
	fetch := func(ctx context.Context) (map[uuid.UUID]Row, error) {
		fetchMu.Lock()
		defer fetchMu.Unlock()
		fetches++
		return map[uuid.UUID]Row{id: {"current_stock": stock}}, nil
	}

	cache := NewCache()
	sess := NewSession("ingredients", cache, transport, fetch)
	sess.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sess.Run(ctx) }()

	waitFor(t, func() bool { return sess.State() == StateSynced }, "session never synced")

	// Stock changes while the transport is down; the event is lost for good.
	fetchMu.Lock()
	stock = 55
	fetchMu.Unlock()
	first.lose()

	waitFor(t, func() bool { return transport.subscribeCount() >= 2 }, "session never resubscribed")
	waitFor(t, func() bool {
		row, ok := cache.Get(id)
		return ok && row["current_stock"] == 55
	}, "refetch snapshot never installed")

	fetchMu.Lock()
	n := fetches
	fetchMu.Unlock()
	if n < 2 {
		t.Errorf("fetches = %d, want one per subscribe", n)
	}
}

func TestHubTransportBridgesFeedEvents(t *testing.T) {
	hub := feed.NewHub()
	go hub.Run()

	transport := &HubTransport{Hub: hub}
	stream, err := transport.Subscribe(context.Background(), "menus")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	id := uuid.New()
	hub.Publish(feed.NewEvent("menus", feed.ActionInsert, id, map[string]interface{}{"name": "croissant"}))

	select {
	case ev := <-stream.Events():
		if ev.RowID != id || ev.Version == 0 {
			t.Fatalf("event = %+v, want row %s with stamped version", ev, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event bridged from hub")
	}
}
