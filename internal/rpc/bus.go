// Package rpc turns the publish/subscribe transport into one-shot request and
// response calls. Requests go to <topic>/<id>, replies come back on
// _response/<topic>/<id>.
package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout applies to requests made with a zero timeout.
const DefaultTimeout = 5 * time.Second

// Bus multiplexes local listeners over broker subscriptions. A broker
// subscription exists while its pattern has at least one listener.
type Bus struct {
	conn     mqtt.Conn
	timeout  time.Duration
	observer Observer
	log      *log.Logger

	mu      sync.Mutex
	subs    map[string]*subscription
	nextID  uint64
	closing bool

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
}

// subscription is the listener set of one pattern. op serializes the broker
// subscribe and unsubscribe calls of the pattern; listeners is guarded by
// Bus.mu.
type subscription struct {
	op        sync.Mutex
	active    bool
	listeners map[uint64]mqtt.Handler
}

// Option configures a Bus.
type Option func(*Bus)

// WithTimeout sets the timeout used when Request is given none.
func WithTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithObserver reports served commands and request outcomes to o.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		if o != nil {
			b.observer = o
		}
	}
}

// New creates a bus over conn.
func New(conn mqtt.Conn, logger *log.Logger, opts ...Option) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		conn:     conn,
		timeout:  DefaultTimeout,
		observer: nopObserver{},
		log:      logger,
		subs:     make(map[string]*subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ListenerCount returns the number of local listeners on pattern.
func (b *Bus) ListenerCount(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subs[pattern]; ok {
		return len(s.listeners)
	}
	return 0
}

// listen adds h to pattern, subscribing on the broker for the first
// listener. The returned function removes the listener again.
func (b *Bus) listen(ctx context.Context, pattern string, h mqtt.Handler) (func(context.Context), error) {
	b.mu.Lock()
	s, ok := b.subs[pattern]
	if !ok {
		s = &subscription{listeners: make(map[uint64]mqtt.Handler)}
		b.subs[pattern] = s
	}
	b.nextID++
	id := b.nextID
	s.listeners[id] = h
	b.mu.Unlock()

	s.op.Lock()
	defer s.op.Unlock()

	if !s.active {
		if err := b.conn.Subscribe(ctx, pattern, b.route(pattern)); err != nil {
			b.mu.Lock()
			delete(s.listeners, id)
			b.dropIfIdleLocked(pattern, s)
			b.mu.Unlock()
			return nil, err
		}
		s.active = true
	}

	return func(ctx context.Context) { b.unlisten(ctx, pattern, s, id) }, nil
}

// unlisten removes listener id and unsubscribes when none is left.
func (b *Bus) unlisten(ctx context.Context, pattern string, s *subscription, id uint64) {
	b.mu.Lock()
	delete(s.listeners, id)
	b.mu.Unlock()

	s.op.Lock()
	defer s.op.Unlock()

	b.mu.Lock()
	idle := s.active && len(s.listeners) == 0
	b.mu.Unlock()
	if !idle {
		return
	}

	if err := b.conn.Unsubscribe(ctx, pattern); err != nil {
		b.log.WarnWithFields(logrus.Fields{"pattern": pattern}, "Failed to unsubscribe: %v", err)
	}
	s.active = false

	b.mu.Lock()
	b.dropIfIdleLocked(pattern, s)
	b.mu.Unlock()
}

func (b *Bus) dropIfIdleLocked(pattern string, s *subscription) {
	if len(s.listeners) == 0 && b.subs[pattern] == s {
		delete(b.subs, pattern)
	}
}

// route fans a broker message out to the current listeners of pattern.
func (b *Bus) route(pattern string) mqtt.Handler {
	return func(m mqtt.Message) {
		b.mu.Lock()
		s, ok := b.subs[pattern]
		if !ok {
			b.mu.Unlock()
			return
		}
		targets := make([]mqtt.Handler, 0, len(s.listeners))
		for _, h := range s.listeners {
			targets = append(targets, h)
		}
		b.mu.Unlock()

		for _, h := range targets {
			h(m)
		}
	}
}

// Shutdown stops accepting inbound requests and waits for running handlers
// until ctx ends. Handlers still running after that see their context
// canceled.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.tasks.Wait()
		close(done)
	}()

	defer b.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
