package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_Invariant(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		errText  string
		expected Envelope
	}{
		{name: "success drops error", status: 200, errText: "ignored", expected: Envelope{Status: 200}},
		{name: "2xx upper bound", status: 299, expected: Envelope{Status: 299}},
		{name: "failure keeps error", status: 400, errText: "appId is required", expected: Envelope{Status: 400, Error: "appId is required"}},
		{name: "failure without text", status: 404, expected: Envelope{Status: 404, Error: "Not Found"}},
		{name: "unknown status without text", status: 599, expected: Envelope{Status: 599, Error: "status 599"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope(tt.status, tt.errText)
			assert.Equal(t, tt.expected, env)
			assert.True(t, env.Valid())
		})
	}
}

func TestEnvelope_Valid(t *testing.T) {
	assert.True(t, OK().Valid())
	assert.False(t, Envelope{Status: 200, Error: "boom"}.Valid())
	assert.False(t, Envelope{Status: 500}.Valid())
	assert.True(t, Envelope{Status: 500, Error: "boom"}.Valid())
}

func TestParseResponse(t *testing.T) {
	raw := Payload(`{"status":200,"applications":[{"appId":"youtube"}]}`)

	resp, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, string(raw), string(resp.Raw))

	var decoded struct {
		Applications []struct {
			AppID string `json:"appId"`
		} `json:"applications"`
	}
	require.NoError(t, resp.Decode(&decoded))
	require.Len(t, decoded.Applications, 1)
	assert.Equal(t, "youtube", decoded.Applications[0].AppID)
}

func TestParseResponse_Invalid(t *testing.T) {
	_, err := ParseResponse(Payload(`not json`))
	assert.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Validation("bad %s", "field")))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("missing")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(Conflict("already started")))
	assert.Equal(t, http.StatusNotImplemented, StatusOf(Unimplemented("restart")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
	assert.Equal(t, http.StatusNotFound, StatusOf(fmt.Errorf("wrapped: %w", NotFound("app"))))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("handler: %w", Conflict("telemetry already started"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)

	cause := errors.New("exit status 1")
	internal := Internal("device command failed", cause)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, "device command failed: exit status 1", internal.Error())
}

func TestFailure(t *testing.T) {
	payload := Failure(NotFound("unknown application %q", "netflix"), Payload(`{"appId":"netflix"}`))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, `unknown application "netflix"`, decoded["error"])
	assert.Equal(t, map[string]interface{}{"appId": "netflix"}, decoded["request"])
}

func TestFailure_DefaultsTo500(t *testing.T) {
	payload := Failure(errors.New("boom"), nil)
	assert.Equal(t, `{"status":500,"error":"boom","request":null}`, string(payload))
}

func TestParseFailure(t *testing.T) {
	payload := ParseFailure(Payload("not json"), Packet{Topic: "_response/device/info/1", QoS: 2, MessageID: 7})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, float64(500), decoded["status"])
	assert.Equal(t, ParseFailureText, decoded["error"])
	assert.Equal(t, "not json", decoded["raw"])
	packet, ok := decoded["packet"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "_response/device/info/1", packet["topic"])
	assert.Equal(t, float64(2), packet["qos"])
}

func TestNotification(t *testing.T) {
	at := time.UnixMilli(1735689600123)
	payload := Notification(at, LevelWarn, "telemetry degraded")
	assert.Equal(t, `{"timestamp":1735689600123,"level":"warn","message":"telemetry degraded"}`, string(payload))
}

func TestVersion(t *testing.T) {
	payload := Version("1.2.0", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, `{"version":"1.2.0","startedAt":"2025-01-02T03:04:05Z"}`, string(payload))
}
