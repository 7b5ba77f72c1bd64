package mqtt

import "errors"

// Transport errors. Callers match them with errors.Is; the wrapped message
// carries the broker's own error text.
var (
	ErrConnectionFailed  = errors.New("mqtt connection failed")
	ErrNotConnected      = errors.New("mqtt client not connected")
	ErrPublishFailed     = errors.New("mqtt publish failed")
	ErrSubscribeFailed   = errors.New("mqtt subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt unsubscribe failed")
	ErrInvalidTopic      = errors.New("invalid mqtt topic")
	ErrInvalidQoS        = errors.New("invalid mqtt qos")
)
