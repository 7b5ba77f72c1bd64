package mqtt

import (
	"encoding/json"

	"github.com/ibs-source/rc-bridge/internal/message"
)

// Message is an inbound publish as handed to subscribers.
type Message struct {
	Topic     string
	Payload   message.Payload
	QoS       byte
	Retained  bool
	Duplicate bool
	MessageID uint16
	// Malformed is set when the original payload was empty or not valid JSON;
	// Payload then holds the parse-failure envelope.
	Malformed bool
	// Empty is set alongside Malformed when the original payload had no bytes.
	Empty bool
}

// Handler receives inbound messages for a subscription.
type Handler func(Message)

// Normalize replaces an empty or unparsable payload with the parse-failure
// envelope so listeners always receive structured data.
func Normalize(m Message) Message {
	if len(m.Payload) > 0 && json.Valid(m.Payload) {
		return m
	}
	m.Empty = len(m.Payload) == 0
	m.Payload = message.ParseFailure(m.Payload, message.Packet{
		Topic:     m.Topic,
		QoS:       m.QoS,
		Retained:  m.Retained,
		Duplicate: m.Duplicate,
		MessageID: m.MessageID,
	})
	m.Malformed = true
	return m
}
