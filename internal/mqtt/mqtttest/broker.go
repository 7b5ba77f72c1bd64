// Package mqtttest provides an in-memory broker implementing mqtt.Conn so
// correlation, dispatch and telemetry can be tested without a live broker.
package mqtttest

import (
	"context"
	"sync"
	"time"

	"github.com/ibs-source/rc-bridge/internal/mqtt"
)

// Record is one publish seen by the broker.
type Record struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// Broker delivers publishes synchronously to every matching subscription.
// Handlers run outside the broker lock, so they may publish or subscribe.
type Broker struct {
	mu            sync.Mutex
	qos           byte
	subs          map[string]mqtt.Handler
	retained      map[string][]byte
	published     []Record
	publishErrs   map[string]error
	subscribeErr  error
	subscribeHits map[string]int
	changed       chan struct{}
}

// New returns an empty broker whose default QoS is 2.
func New() *Broker {
	return &Broker{
		qos:           2,
		subs:          make(map[string]mqtt.Handler),
		retained:      make(map[string][]byte),
		publishErrs:   make(map[string]error),
		subscribeHits: make(map[string]int),
		changed:       make(chan struct{}),
	}
}

var _ mqtt.Conn = (*Broker)(nil)

// Publish records the message and delivers it to matching subscriptions.
func (b *Broker) Publish(ctx context.Context, topic string, payload any, opts ...mqtt.PublishOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mqtt.ValidateTopic(topic); err != nil {
		return err
	}
	o, err := mqtt.ResolvePublishOptions(b.qos, opts)
	if err != nil {
		return err
	}
	data, err := mqtt.Encode(payload)
	if err != nil {
		return err
	}

	b.mu.Lock()
	for pattern, perr := range b.publishErrs {
		if mqtt.Match(pattern, topic) {
			b.mu.Unlock()
			return perr
		}
	}
	data = append([]byte(nil), data...)
	b.published = append(b.published, Record{Topic: topic, Payload: data, QoS: o.QoS, Retained: o.Retained})
	if o.Retained {
		if len(data) == 0 {
			delete(b.retained, topic)
		} else {
			b.retained[topic] = data
		}
	}
	var targets []mqtt.Handler
	for pattern, h := range b.subs {
		if mqtt.Match(pattern, topic) {
			targets = append(targets, h)
		}
	}
	b.notifyLocked()
	b.mu.Unlock()

	for _, h := range targets {
		h(mqtt.Normalize(mqtt.Message{Topic: topic, Payload: data, QoS: o.QoS}))
	}
	return nil
}

// Subscribe installs handler for pattern and replays matching retained
// messages to it.
func (b *Broker) Subscribe(ctx context.Context, pattern string, handler mqtt.Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mqtt.ValidatePattern(pattern); err != nil {
		return err
	}

	b.mu.Lock()
	if b.subscribeErr != nil {
		err := b.subscribeErr
		b.mu.Unlock()
		return err
	}
	b.subs[pattern] = handler
	b.subscribeHits[pattern]++
	var replay []mqtt.Message
	for topic, data := range b.retained {
		if mqtt.Match(pattern, topic) {
			replay = append(replay, mqtt.Message{Topic: topic, Payload: data, QoS: b.qos, Retained: true})
		}
	}
	b.notifyLocked()
	b.mu.Unlock()

	for _, m := range replay {
		handler(mqtt.Normalize(m))
	}
	return nil
}

// Unsubscribe drops the subscription for pattern.
func (b *Broker) Unsubscribe(ctx context.Context, pattern string) error {
	b.mu.Lock()
	delete(b.subs, pattern)
	b.notifyLocked()
	b.mu.Unlock()
	return nil
}

// Deliver hands raw bytes to matching subscribers as if another client had
// published them, without recording or validating anything.
func (b *Broker) Deliver(topic string, payload []byte) {
	b.mu.Lock()
	var targets []mqtt.Handler
	for pattern, h := range b.subs {
		if mqtt.Match(pattern, topic) {
			targets = append(targets, h)
		}
	}
	b.mu.Unlock()

	for _, h := range targets {
		h(mqtt.Normalize(mqtt.Message{Topic: topic, Payload: payload, QoS: b.qos}))
	}
}

// FailPublish makes publishes to topics matching pattern return err.
func (b *Broker) FailPublish(pattern string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.publishErrs, pattern)
		return
	}
	b.publishErrs[pattern] = err
}

// FailSubscribe makes every following Subscribe return err until reset with nil.
func (b *Broker) FailSubscribe(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribeErr = err
}

// Subscribed reports whether pattern currently has a subscription.
func (b *Broker) Subscribed(pattern string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[pattern]
	return ok
}

// SubscribeCount returns how many times pattern was subscribed.
func (b *Broker) SubscribeCount(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeHits[pattern]
}

// Subscriptions returns the number of active subscriptions.
func (b *Broker) Subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Retained returns the retained payload held for topic.
func (b *Broker) Retained(topic string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.retained[topic]
	return data, ok
}

// Published returns every publish recorded so far, in order.
func (b *Broker) Published() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Record(nil), b.published...)
}

// PublishedTo returns the publishes whose topic matches pattern.
func (b *Broker) PublishedTo(pattern string) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Record
	for _, r := range b.published {
		if mqtt.Match(pattern, r.Topic) {
			out = append(out, r)
		}
	}
	return out
}

// WaitFor blocks until at least n publishes match pattern or timeout elapses.
func (b *Broker) WaitFor(pattern string, n int, timeout time.Duration) ([]Record, bool) {
	return b.waitUntil(timeout, func() ([]Record, bool) {
		recs := b.PublishedTo(pattern)
		return recs, len(recs) >= n
	})
}

// WaitSubscribed blocks until pattern has a subscription or timeout elapses.
func (b *Broker) WaitSubscribed(pattern string, timeout time.Duration) bool {
	_, ok := b.waitUntil(timeout, func() ([]Record, bool) {
		return nil, b.Subscribed(pattern)
	})
	return ok
}

func (b *Broker) waitUntil(timeout time.Duration, cond func() ([]Record, bool)) ([]Record, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		b.mu.Lock()
		changed := b.changed
		b.mu.Unlock()

		if recs, ok := cond(); ok {
			return recs, true
		}
		select {
		case <-changed:
		case <-deadline.C:
			recs, ok := cond()
			return recs, ok
		}
	}
}

func (b *Broker) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}
