package mqtt

import (
	"encoding/json"
	"fmt"
)

// PublishOptions are the per-publish delivery settings.
type PublishOptions struct {
	QoS      byte
	Retained bool
}

// PublishOption overrides a delivery setting for one publish.
type PublishOption func(*PublishOptions)

// WithQoS sets the delivery quality for one publish.
func WithQoS(qos byte) PublishOption {
	return func(o *PublishOptions) { o.QoS = qos }
}

// WithRetained asks the broker to keep the payload as the topic's last value.
func WithRetained() PublishOption {
	return func(o *PublishOptions) { o.Retained = true }
}

// ResolvePublishOptions applies opts over the connection default QoS.
func ResolvePublishOptions(defaultQoS byte, opts []PublishOption) (PublishOptions, error) {
	o := PublishOptions{QoS: defaultQoS}
	for _, opt := range opts {
		opt(&o)
	}
	if o.QoS > 2 {
		return o, fmt.Errorf("%w: %d", ErrInvalidQoS, o.QoS)
	}
	return o, nil
}

// Encode serializes a payload for the wire. Byte slices and raw JSON are
// sent as they are, anything else is JSON encoded.
func Encode(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}
