package mqtt

import "context"

// Conn is the transport surface the correlation, dispatch and telemetry
// layers depend on. *Client implements it against a broker.
type Conn interface {
	Publish(ctx context.Context, topic string, payload any, opts ...PublishOption) error
	Subscribe(ctx context.Context, pattern string, handler Handler) error
	Unsubscribe(ctx context.Context, pattern string) error
}

var _ Conn = (*Client)(nil)
