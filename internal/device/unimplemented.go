package device

import (
	"context"
	"time"

	"github.com/ibs-source/rc-bridge/internal/message"
)

// Unimplemented answers every capability with a 501 error.
type Unimplemented struct{}

var _ Device = Unimplemented{}

func (Unimplemented) ListApplications(context.Context) ([]Application, error) {
	return nil, message.Unimplemented("list applications")
}

func (Unimplemented) LaunchApplication(context.Context, string, map[string]string) error {
	return message.Unimplemented("launch application")
}

func (Unimplemented) ExitApplication(context.Context, string) error {
	return message.Unimplemented("exit application")
}

func (Unimplemented) ApplicationState(context.Context, string) (AppState, error) {
	return "", message.Unimplemented("application state")
}

func (Unimplemented) Restart(context.Context) error {
	return message.Unimplemented("restart")
}

func (Unimplemented) PressKey(context.Context, Key) error {
	return message.Unimplemented("key press")
}

func (Unimplemented) LongPressKey(context.Context, Key, time.Duration) error {
	return message.Unimplemented("long key press")
}

func (Unimplemented) SetLanguage(context.Context, string) error {
	return message.Unimplemented("set language")
}

func (Unimplemented) Language(context.Context) (string, error) {
	return "", message.Unimplemented("get language")
}

func (Unimplemented) DeviceMetrics(context.Context) (Sample, error) {
	return nil, message.Unimplemented("device telemetry")
}

func (Unimplemented) ApplicationMetrics(context.Context, string) (Sample, error) {
	return nil, message.Unimplemented("application telemetry")
}

func (Unimplemented) Health(context.Context) (Health, error) {
	return Health{}, message.Unimplemented("health check")
}

func (Unimplemented) Info(context.Context) (Info, error) {
	return Info{}, message.Unimplemented("device info")
}
