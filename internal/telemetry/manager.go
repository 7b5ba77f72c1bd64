// Package telemetry runs recurring metric publications keyed by target, at
// most one session per key.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// ErrClosed is wrapped by Start once the manager has been closed.
var ErrClosed = errors.New("telemetry manager closed")

// Producer returns one telemetry sample.
type Producer func(ctx context.Context) (any, error)

// Publisher sends samples to the bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any, opts ...mqtt.PublishOption) error
}

// Notifier reports session health to clients.
type Notifier interface {
	Notify(ctx context.Context, level message.Level, text string)
}

// Sink receives every published sample.
type Sink interface {
	Write(key Key, at time.Time, sample []byte)
}

// Hooks receive session events, typically for metrics. Nil fields are skipped.
type Hooks struct {
	OnFailure func(key Key, err error)
	OnSample  func(key Key)
}

// Options configure a Manager.
type Options struct {
	// Topic receives device samples; application samples go to Topic/<appId>.
	Topic string
	// FailureLimit stops a session after that many consecutive failures; 0 never stops.
	FailureLimit int
	Notifier     Notifier
	Sink         Sink
	Hooks        Hooks
}

type session struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns the running sessions.
type Manager struct {
	pub  Publisher
	opts Options
	log  *log.Logger

	mu       sync.Mutex
	sessions map[Key]*session
	closed   bool
}

// NewManager creates a manager publishing through pub.
func NewManager(pub Publisher, logger *log.Logger, opts Options) *Manager {
	return &Manager{
		pub:      pub,
		opts:     opts,
		log:      logger,
		sessions: make(map[Key]*session),
	}
}

// Topic returns the topic samples of key are published on.
func (m *Manager) Topic(key Key) string {
	if key.Target() == TargetApplication {
		return mqtt.Join(m.opts.Topic, key.AppID())
	}
	return m.opts.Topic
}

// Start runs producer now and then every frequency, publishing each sample.
// It fails with a validation error for a non-positive frequency and with a
// conflict when key already has a session.
func (m *Manager) Start(key Key, frequency time.Duration, producer Producer) error {
	if frequency <= 0 {
		return message.Validation("frequency must be a positive integer")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return message.Internal("telemetry unavailable", ErrClosed)
	}
	if _, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return message.Conflict("telemetry for %s already started", key)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{cancel: cancel, done: make(chan struct{})}
	m.sessions[key] = s
	m.mu.Unlock()

	m.log.InfoWithFields(logrus.Fields{"session": key.String(), "frequency": frequency}, "Telemetry started")
	go m.run(ctx, key, s, frequency, producer)
	return nil
}

// Stop cancels the session of key and waits for it to finish, so producer
// is not invoked again once Stop returns. It fails with a conflict when key
// has no session.
func (m *Manager) Stop(key Key) error {
	m.mu.Lock()
	s, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return message.Conflict("telemetry for %s not started", key)
	}
	delete(m.sessions, key)
	m.mu.Unlock()

	s.cancel()
	<-s.done
	m.log.InfoWithFields(logrus.Fields{"session": key.String()}, "Telemetry stopped")
	return nil
}

// Close stops every session and makes later Start calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.StopAll()
}

// StopAll stops every session.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[Key]*session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
	for _, s := range sessions {
		<-s.done
	}
}

// Active reports whether key has a running session.
func (m *Manager) Active(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[key]
	return ok
}

// Len returns the number of running sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) run(ctx context.Context, key Key, s *session, frequency time.Duration, producer Producer) {
	defer close(s.done)

	topic := m.Topic(key)
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}
		err := m.cycle(ctx, key, topic, producer)
		if ctx.Err() != nil {
			return
		}
		if failures = m.supervise(ctx, key, err, failures); failures < 0 {
			m.remove(key, s)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// cycle produces and publishes one sample.
func (m *Manager) cycle(ctx context.Context, key Key, topic string, producer Producer) error {
	sample, err := produce(ctx, producer)
	if err != nil {
		return err
	}
	data, err := mqtt.Encode(sample)
	if err != nil {
		return err
	}
	if err := m.pub.Publish(ctx, topic, data); err != nil {
		return err
	}
	if m.opts.Sink != nil {
		m.opts.Sink.Write(key, time.Now(), data)
	}
	if m.opts.Hooks.OnSample != nil {
		m.opts.Hooks.OnSample(key)
	}
	return nil
}

// supervise updates the failure streak after a cycle and returns the new
// streak, or -1 when the session must end.
func (m *Manager) supervise(ctx context.Context, key Key, err error, failures int) int {
	notifyCtx := context.WithoutCancel(ctx)
	fields := logrus.Fields{"session": key.String()}

	if err == nil {
		if failures > 0 {
			m.log.InfoWithFields(fields, "Telemetry recovered after %d failed cycles", failures)
			m.notify(notifyCtx, message.LevelInfo, fmt.Sprintf("telemetry recovered for %s", key))
		}
		return 0
	}

	failures++
	m.log.WarnWithFields(fields, "Telemetry cycle failed (%d in a row): %v", failures, err)
	if m.opts.Hooks.OnFailure != nil {
		m.opts.Hooks.OnFailure(key, err)
	}
	if failures == 1 {
		m.notify(notifyCtx, message.LevelWarn, fmt.Sprintf("telemetry degraded for %s: %v", key, err))
	}
	if m.opts.FailureLimit > 0 && failures >= m.opts.FailureLimit {
		m.log.ErrorWithFields(fields, "Telemetry stopped after %d consecutive failures", failures)
		m.notify(notifyCtx, message.LevelError,
			fmt.Sprintf("telemetry for %s stopped after %d consecutive failures: %v", key, failures, err))
		return -1
	}
	return failures
}

// remove drops s from the map unless a Stop already did.
func (m *Manager) remove(key Key, s *session) {
	m.mu.Lock()
	if m.sessions[key] == s {
		delete(m.sessions, key)
	}
	m.mu.Unlock()
	s.cancel()
}

func (m *Manager) notify(ctx context.Context, level message.Level, text string) {
	if m.opts.Notifier != nil {
		m.opts.Notifier.Notify(ctx, level, text)
	}
}

// produce calls producer, converting a panic into an error.
func produce(ctx context.Context, producer Producer) (sample any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer panicked: %v", r)
		}
	}()
	return producer(ctx)
}
