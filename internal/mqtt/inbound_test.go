package mqtt

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ibs-source/rc-bridge/internal/message"
)

func TestNormalize_ValidPayloadUntouched(t *testing.T) {
	in := Message{Topic: "a/b", Payload: []byte(`{"status":200}`)}
	out := Normalize(in)
	if string(out.Payload) != `{"status":200}` || out.Malformed {
		t.Errorf("Normalize() changed a valid payload: %+v", out)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "not json", payload: []byte("not json")},
		{name: "empty", payload: nil},
		{name: "truncated", payload: []byte(`{"status":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(Message{
				Topic:     "_response/applications/list/1",
				Payload:   tt.payload,
				QoS:       2,
				MessageID: 7,
			})
			if !out.Malformed {
				t.Fatal("Malformed = false; want true")
			}
			if out.Empty != (len(tt.payload) == 0) {
				t.Errorf("Empty = %v for payload %q", out.Empty, tt.payload)
			}

			var env struct {
				Status int    `json:"status"`
				Error  string `json:"error"`
				Raw    string `json:"raw"`
				Packet struct {
					Topic     string `json:"topic"`
					QoS       int    `json:"qos"`
					MessageID int    `json:"messageId"`
				} `json:"packet"`
			}
			if err := json.Unmarshal(out.Payload, &env); err != nil {
				t.Fatalf("parse-failure envelope is not JSON: %v", err)
			}
			if env.Status != 500 || env.Error != message.ParseFailureText {
				t.Errorf("envelope = %d %q; want 500 %q", env.Status, env.Error, message.ParseFailureText)
			}
			if env.Raw != string(tt.payload) {
				t.Errorf("raw = %q; want %q", env.Raw, tt.payload)
			}
			if env.Packet.Topic != "_response/applications/list/1" || env.Packet.QoS != 2 || env.Packet.MessageID != 7 {
				t.Errorf("packet = %+v", env.Packet)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	raw := []byte("opaque")
	if got, _ := Encode(raw); string(got) != "opaque" {
		t.Errorf("Encode([]byte) = %s; want bytes unchanged", got)
	}
	if got, _ := Encode(json.RawMessage(`{"a":1}`)); string(got) != `{"a":1}` {
		t.Errorf("Encode(RawMessage) = %s", got)
	}
	got, err := Encode(struct {
		Status int `json:"status"`
	}{Status: 200})
	if err != nil || string(got) != `{"status":200}` {
		t.Errorf("Encode(struct) = %s, %v", got, err)
	}
	if _, err := Encode(make(chan int)); err == nil {
		t.Error("Encode(chan) error = nil; want error")
	}
}

func TestResolvePublishOptions(t *testing.T) {
	o, err := ResolvePublishOptions(2, nil)
	if err != nil || o.QoS != 2 || o.Retained {
		t.Errorf("defaults = %+v, %v; want qos 2 not retained", o, err)
	}

	o, err = ResolvePublishOptions(2, []PublishOption{WithQoS(1), WithRetained()})
	if err != nil || o.QoS != 1 || !o.Retained {
		t.Errorf("overrides = %+v, %v; want qos 1 retained", o, err)
	}

	if _, err := ResolvePublishOptions(2, []PublishOption{WithQoS(3)}); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v; want ErrInvalidQoS", err)
	}
}
