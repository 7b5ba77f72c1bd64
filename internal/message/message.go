// Package message provides the wire shapes exchanged over the bus: status envelopes,
// parsed responses, failure envelopes and notifications.
package message

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Payload is the canonical alias for raw message body
type Payload = []byte

// Envelope is the status part of every response. Handlers embed it in their
// response structs so status and error lead the encoded object.
//
// Invariant: Error is non-empty if and only if Status is outside 200-299.
type Envelope struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// OK returns the 200 envelope.
func OK() Envelope {
	return Envelope{Status: http.StatusOK}
}

// NewEnvelope builds an envelope that honours the status/error pairing:
// success statuses drop the error text, failures without text get the
// standard status text.
func NewEnvelope(status int, errText string) Envelope {
	if IsSuccess(status) {
		return Envelope{Status: status}
	}
	if errText == "" {
		errText = http.StatusText(status)
	}
	if errText == "" {
		errText = fmt.Sprintf("status %d", status)
	}
	return Envelope{Status: status, Error: errText}
}

// Valid reports whether the envelope satisfies the status/error invariant.
func (e Envelope) Valid() bool {
	return IsSuccess(e.Status) == (e.Error == "")
}

// IsSuccess reports whether status is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// Response is a response envelope as received, with the full payload kept
// verbatim for decoding into command-specific types.
type Response struct {
	Envelope
	Raw Payload
}

// ParseResponse decodes the status part of payload and keeps the raw bytes.
func ParseResponse(payload Payload) (*Response, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &Response{Envelope: env, Raw: payload}, nil
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return IsSuccess(r.Status)
}

// Decode unmarshals the full response payload into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Raw, v)
}
