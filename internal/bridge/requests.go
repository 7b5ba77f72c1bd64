package bridge

import (
	"encoding/json"
	"time"

	"github.com/ibs-source/rc-bridge/internal/device"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/rpc"
)

const defaultLongPress = time.Second

type appRequest struct {
	AppID string `json:"appId"`
}

type launchRequest struct {
	AppID      string            `json:"appId"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type keyRequest struct {
	Key        string `json:"key"`
	DurationMs *int64 `json:"durationMs,omitempty"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type telemetryRequest struct {
	AppID     string      `json:"appId,omitempty"`
	Frequency json.Number `json:"frequency"`
}

type applicationsResponse struct {
	message.Envelope
	Applications []device.Application `json:"applications"`
}

type stateResponse struct {
	message.Envelope
	AppID string          `json:"appId"`
	State device.AppState `json:"state"`
}

type infoResponse struct {
	message.Envelope
	device.Info
}

type healthResponse struct {
	message.Envelope
	device.Health
}

type languageResponse struct {
	message.Envelope
	Language string `json:"language"`
}

// decode reads the request body into v. An empty body decodes as {}.
func decode(req rpc.Request, v any) error {
	if len(req.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return message.Validation("invalid request: %v", err)
	}
	return nil
}

func requireAppID(appID string) error {
	if appID == "" {
		return message.Validation("appId is required")
	}
	return nil
}

// frequency converts the millisecond frequency field.
func (r telemetryRequest) frequency() (time.Duration, error) {
	if r.Frequency == "" {
		return 0, message.Validation("frequency is required")
	}
	ms, err := r.Frequency.Int64()
	if err != nil || ms <= 0 {
		return 0, message.Validation("frequency must be a positive integer")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// duration returns the long-press hold time, one second when absent.
func (r keyRequest) duration() (time.Duration, error) {
	if r.DurationMs == nil {
		return defaultLongPress, nil
	}
	if *r.DurationMs <= 0 {
		return 0, message.Validation("durationMs must be a positive integer")
	}
	return time.Duration(*r.DurationMs) * time.Millisecond, nil
}
