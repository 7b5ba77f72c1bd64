package message

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ibs-source/rc-bridge/pkg/jsonfast"
)

// ParseFailureText is the error text of the synthetic envelope delivered for
// inbound payloads that are not valid JSON.
const ParseFailureText = "failed to parse msg"

// Packet describes the inbound message a parse failure came from.
type Packet struct {
	Topic     string
	QoS       byte
	Retained  bool
	Duplicate bool
	MessageID uint16
}

// ParseFailure builds {status:500, error:"failed to parse msg", raw, packet}.
func ParseFailure(raw Payload, packet Packet) Payload {
	b := jsonfast.New(128 + len(raw))
	b.BeginObject()
	b.AddIntField("status", http.StatusInternalServerError)
	b.AddStringField("error", ParseFailureText)
	b.AddStringField("raw", string(raw))
	b.BeginObjectField("packet")
	b.AddStringField("topic", packet.Topic)
	b.AddIntField("qos", int(packet.QoS))
	b.AddBoolField("retained", packet.Retained)
	b.AddBoolField("dup", packet.Duplicate)
	b.AddIntField("messageId", int(packet.MessageID))
	b.EndObject()
	b.EndObject()
	return b.Bytes()
}

// Failure builds the normalized envelope published when a handler fails:
// {status: <status of err or 500>, error: <message>, request: <original payload>}.
func Failure(err error, request Payload) Payload {
	status := StatusOf(err)
	text := ""
	if err != nil {
		text = err.Error()
	}
	env := NewEnvelope(status, text)

	if len(request) > 0 && !json.Valid(request) {
		request = nil
	}

	b := jsonfast.New(96 + len(env.Error) + len(request))
	b.BeginObject()
	b.AddIntField("status", env.Status)
	b.AddStringField("error", env.Error)
	b.AddRawJSONField("request", request)
	b.EndObject()
	return b.Bytes()
}

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification builds {timestamp, level, message} with a millisecond timestamp.
func Notification(at time.Time, level Level, text string) Payload {
	b := jsonfast.New(64 + len(text))
	b.BeginObject()
	b.AddInt64Field("timestamp", at.UnixMilli())
	b.AddStringField("level", string(level))
	b.AddStringField("message", text)
	b.EndObject()
	return b.Bytes()
}

// Version builds the retained version document.
func Version(version string, startedAt time.Time) Payload {
	b := jsonfast.New(96)
	b.BeginObject()
	b.AddStringField("version", version)
	b.AddTimeRFC3339Field("startedAt", startedAt)
	b.EndObject()
	return b.Bytes()
}
