package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// Request is one inbound command as seen by a handler.
type Request struct {
	Command string
	ID      string
	Topic   string
	Payload message.Payload
	// Malformed is set when a non-empty request body was not valid JSON;
	// Payload then holds the parse-failure envelope. An empty body arrives
	// as a nil Payload.
	Malformed bool
}

// HandlerFunc serves a command. The returned value is published verbatim as
// the response; a returned error becomes a failure envelope whose status is
// taken from the error (500 when it carries none).
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// Handle subscribes to every single-level child of prefix and serves each
// inbound request with fn in its own goroutine. Exactly one response is
// published per request id.
func (b *Bus) Handle(ctx context.Context, prefix string, fn HandlerFunc) error {
	pattern := mqtt.Join(prefix, "+")
	if _, err := b.listen(ctx, pattern, func(m mqtt.Message) { b.dispatch(prefix, fn, m) }); err != nil {
		return fmt.Errorf("failed to register handler for %s: %w", prefix, err)
	}
	b.log.DebugWithFields(logrus.Fields{"command": prefix}, "Handler registered")
	return nil
}

func (b *Bus) dispatch(prefix string, fn HandlerFunc, m mqtt.Message) {
	id := mqtt.LastLevel(m.Topic)
	if id == "" {
		b.log.ErrorWithFields(logrus.Fields{"command": prefix, "topic": m.Topic},
			"Unserviceable request: no correlation id in topic, no reply possible")
		return
	}

	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		b.log.WarnWithFields(logrus.Fields{"command": prefix, "id": id}, "Dropping request received during shutdown")
		return
	}
	b.tasks.Add(1)
	b.mu.Unlock()

	req := Request{Command: prefix, ID: id, Topic: m.Topic, Payload: m.Payload, Malformed: m.Malformed}
	if m.Empty {
		// Commands without arguments may be sent with no body at all.
		req.Payload = nil
		req.Malformed = false
	}
	go func() {
		defer b.tasks.Done()
		b.serve(fn, req)
	}()
}

func (b *Bus) serve(fn HandlerFunc, req Request) {
	start := time.Now()
	fields := logrus.Fields{"command": req.Command, "id": req.ID}

	var out []byte
	var herr error
	if req.Malformed {
		herr = message.Validation("request payload is not valid JSON")
	} else {
		out, herr = b.invoke(fn, req)
	}
	if herr != nil {
		b.log.WarnWithFields(fields, "Handler failed: %v", herr)
		out = message.Failure(herr, req.Payload)
	}

	status := 0
	if resp, err := message.ParseResponse(out); err == nil {
		status = resp.Status
	}

	if err := b.conn.Publish(b.ctx, mqtt.ResponseTopic(req.Topic), out); err != nil {
		b.log.ErrorWithFields(fields, "Failed to publish response: %v", err)
	}

	served := Served{Command: req.Command, ID: req.ID, Status: status, Duration: time.Since(start)}
	if herr != nil {
		served.Error = herr.Error()
	}
	b.observer.Served(served)
	b.log.DebugWithFields(fields, "Served with status %d in %s", status, served.Duration)
}

// invoke runs fn and encodes its result. Panics are converted to errors.
func (b *Bus) invoke(fn HandlerFunc, req Request) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = message.Internal("handler panicked", fmt.Errorf("%v", r))
		}
	}()

	result, err := fn(b.ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = message.OK()
	}
	out, err = mqtt.Encode(result)
	if err != nil {
		return nil, message.Internal("failed to encode response", err)
	}
	return out, nil
}
