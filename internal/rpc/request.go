package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/sirupsen/logrus"
)

type result struct {
	resp *message.Response
	err  error
}

// Request publishes payload to <topic>/<id> and waits for the reply on
// _response/<topic>/<id>. A 2xx reply is returned as is; any other status
// yields a *RejectedError. No reply within timeout yields a *TimeoutError.
// A zero timeout uses the bus default.
func (b *Bus) Request(ctx context.Context, topic string, payload any, timeout time.Duration) (*message.Response, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}
	id := uuid.NewString()
	requestTopic := mqtt.Join(topic, id)
	responseTopic := mqtt.ResponseTopic(requestTopic)
	start := time.Now()

	// Buffered so the first reply settles the call and later ones are dropped.
	settled := make(chan result, 1)
	settle := func(r result) {
		select {
		case settled <- r:
		default:
		}
	}

	stop, err := b.listen(ctx, responseTopic, func(m mqtt.Message) {
		resp, err := message.ParseResponse(m.Payload)
		if err != nil {
			settle(result{err: fmt.Errorf("invalid response on %s: %w", m.Topic, err)})
			return
		}
		settle(result{resp: resp})
	})
	if err != nil {
		b.observer.Requested(topic, OutcomeTransport, time.Since(start))
		return nil, fmt.Errorf("failed to listen for response to %s: %w", requestTopic, err)
	}
	defer stop(context.WithoutCancel(ctx))

	fields := logrus.Fields{"topic": topic, "id": id}
	b.log.TraceWithFields(fields, "Sending request")

	if err := b.conn.Publish(ctx, requestTopic, payload); err != nil {
		b.observer.Requested(topic, OutcomeTransport, time.Since(start))
		return nil, fmt.Errorf("failed to publish request to %s: %w", requestTopic, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-settled:
		if r.err != nil {
			b.observer.Requested(topic, OutcomeRejected, time.Since(start))
			return nil, r.err
		}
		if !r.resp.OK() {
			b.observer.Requested(topic, OutcomeRejected, time.Since(start))
			return nil, &RejectedError{Topic: topic, Response: r.resp}
		}
		b.observer.Requested(topic, OutcomeOK, time.Since(start))
		return r.resp, nil

	case <-timer.C:
		b.log.DebugWithFields(fields, "Request timed out after %s", timeout)
		b.observer.Requested(topic, OutcomeTimeout, time.Since(start))
		return nil, &TimeoutError{Topic: topic, Timeout: timeout}

	case <-ctx.Done():
		outcome := OutcomeCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = OutcomeTimeout
		}
		b.observer.Requested(topic, outcome, time.Since(start))
		return nil, ctx.Err()
	}
}
