package sync

import (
	"context"
	"log"
	stdsync "sync"
	"time"

	"go-bakery-ws/internal/feed"

	"github.com/google/uuid"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateSubscribing  State = "subscribing"
	StateSynced       State = "synced"
	StateReconnecting State = "reconnecting"
)

// Transport opens a change event stream for one table. It is deliberately
// small so the reconciliation logic stays independent of how events travel
// (in-process hub, WebSocket, or a broker).
type Transport interface {
	Subscribe(ctx context.Context, table string) (EventStream, error)
}

// EventStream delivers events in feed order until it fails or is closed.
// A closed Events channel signals transport loss; Err reports why.
type EventStream interface {
	Events() <-chan feed.Event
	Err() error
	Close()
}

// Fetcher loads the authoritative row set for the watched table. It runs on
// every subscribe, including resubscribes: the feed has no replay, so events
// missed during a gap are recovered by refetching, not backfilled.
type Fetcher func(ctx context.Context) (map[uuid.UUID]Row, error)

// Session drives one table's cache through the subscribe/sync/reconnect
// lifecycle.
type Session struct {
	table     string
	cache     *Cache
	transport Transport
	fetch     Fetcher
	backoff   time.Duration

	stateMu stdsync.Mutex
	state   State
}

func NewSession(table string, cache *Cache, transport Transport, fetch Fetcher) *Session {
	return &Session{
		table:     table,
		cache:     cache,
		transport: transport,
		fetch:     fetch,
		backoff:   time.Second,
		state:     StateDisconnected,
	}
}

// State reports the current lifecycle state. Run publishes each state before
// the blocking step that follows it.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// Run subscribes, refetches, and applies events until ctx is cancelled.
// Transport failure moves the session to reconnecting and it resubscribes
// with a fresh refetch.
func (s *Session) Run(ctx context.Context) error {
	first := true
	for {
		if first {
			s.setState(StateSubscribing)
			first = false
		} else {
			s.setState(StateReconnecting)
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				s.setState(StateDisconnected)
				return ctx.Err()
			}
		}

		stream, err := s.transport.Subscribe(ctx, s.table)
		if err != nil {
			log.Printf("sync[%s]: subscribe failed: %v", s.table, err)
			continue
		}

		rows, err := s.fetch(ctx)
		if err != nil {
			log.Printf("sync[%s]: refetch failed: %v", s.table, err)
			stream.Close()
			continue
		}
		s.cache.Reset(rows)
		s.setState(StateSynced)

		if err := s.consume(ctx, stream); err != nil {
			s.setState(StateDisconnected)
			return err
		}
		// stream ended: transport loss, go around and resubscribe
		log.Printf("sync[%s]: stream lost: %v", s.table, stream.Err())
	}
}

func (s *Session) consume(ctx context.Context, stream EventStream) error {
	defer stream.Close()
	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				return nil
			}
			s.cache.Apply(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HubTransport adapts the in-process feed hub to the Transport interface so
// a dashboard session inside the server binary syncs the same way a remote
// one does.
type HubTransport struct {
	Hub *feed.Hub
}

func (t *HubTransport) Subscribe(ctx context.Context, table string) (EventStream, error) {
	sub := t.Hub.Subscribe(table)
	return &hubStream{sub: sub}, nil
}

type hubStream struct {
	sub *feed.Subscription
}

func (s *hubStream) Events() <-chan feed.Event { return s.sub.C }
func (s *hubStream) Err() error                { return nil }
func (s *hubStream) Close()                    { s.sub.Close() }
