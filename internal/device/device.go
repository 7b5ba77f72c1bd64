// Package device defines the capabilities a controllable target offers to the
// bridge and a binding that drives a target through a command-line debug
// transport.
package device

import (
	"context"
	"time"
)

// Application is an installed application known to the platform table.
type Application struct {
	AppID string `json:"appId"`
}

// AppState is the run state of an application.
type AppState string

// Application states.
const (
	StateRunning AppState = "running"
	StateStopped AppState = "stopped"
)

// Info describes the device. It is published retained at startup.
type Info struct {
	Platform     string `json:"platform"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	OSVersion    string `json:"osVersion,omitempty"`
	Serial       string `json:"serial,omitempty"`
}

// Health is the outcome of a health check. Checks maps each check to "ok" or
// to its failure text.
type Health struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

// Sample is one telemetry reading.
type Sample map[string]any

// Device is the capability contract of a controllable target. Bindings embed
// Unimplemented and override what they support.
type Device interface {
	ListApplications(ctx context.Context) ([]Application, error)
	LaunchApplication(ctx context.Context, appID string, params map[string]string) error
	ExitApplication(ctx context.Context, appID string) error
	ApplicationState(ctx context.Context, appID string) (AppState, error)
	Restart(ctx context.Context) error
	PressKey(ctx context.Context, key Key) error
	LongPressKey(ctx context.Context, key Key, d time.Duration) error
	SetLanguage(ctx context.Context, language string) error
	Language(ctx context.Context) (string, error)
	DeviceMetrics(ctx context.Context) (Sample, error)
	ApplicationMetrics(ctx context.Context, appID string) (Sample, error)
	Health(ctx context.Context) (Health, error)
	Info(ctx context.Context) (Info, error)
}
