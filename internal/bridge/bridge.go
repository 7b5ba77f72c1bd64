// Package bridge serves the remote-control command set on the bus: it maps
// each command topic to a device capability or a telemetry session, and
// publishes the bridge's retained state and notifications.
package bridge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/device"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/ibs-source/rc-bridge/internal/rpc"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Command topics, relative to the configured prefix.
const (
	CmdListApplications     = "applications/list"
	CmdLaunchApplication    = "applications/launch"
	CmdExitApplication      = "applications/exit"
	CmdApplicationState     = "applications/state"
	CmdRestart              = "device/restart"
	CmdDeviceInfo           = "device/info"
	CmdHealth               = "device/health"
	CmdPressKey             = "input/key/press"
	CmdLongPressKey         = "input/key/long-press"
	CmdSetLanguage          = "system/language/set"
	CmdGetLanguage          = "system/language/get"
	CmdStartDeviceTelemetry = "telemetry/device/start"
	CmdStopDeviceTelemetry  = "telemetry/device/stop"
	CmdStartAppTelemetry    = "telemetry/application/start"
	CmdStopAppTelemetry     = "telemetry/application/stop"
)

// Topic prefixes topic with the configured topic prefix.
func Topic(cfg config.BridgeConfig, topic string) string {
	return mqtt.Join(cfg.TopicPrefix, topic)
}

// Deps are the collaborators of a Bridge.
type Deps struct {
	Conn     telemetry.Publisher
	Bus      *rpc.Bus
	Device   device.Device
	Sessions *telemetry.Manager
	Notifier *Notifier
}

// Bridge wires the command set onto the bus.
type Bridge struct {
	Deps
	cfg       config.BridgeConfig
	version   string
	startedAt time.Time
	log       *log.Logger
}

// New creates a bridge reporting version in its retained state.
func New(deps Deps, cfg config.BridgeConfig, version string, logger *log.Logger) *Bridge {
	return &Bridge{
		Deps:      deps,
		cfg:       cfg,
		version:   version,
		startedAt: time.Now(),
		log:       logger,
	}
}

func (b *Bridge) routes() map[string]rpc.HandlerFunc {
	return map[string]rpc.HandlerFunc{
		CmdListApplications:     b.listApplications,
		CmdLaunchApplication:    b.launchApplication,
		CmdExitApplication:      b.exitApplication,
		CmdApplicationState:     b.applicationState,
		CmdRestart:              b.restart,
		CmdDeviceInfo:           b.deviceInfo,
		CmdHealth:               b.health,
		CmdPressKey:             b.pressKey,
		CmdLongPressKey:         b.longPressKey,
		CmdSetLanguage:          b.setLanguage,
		CmdGetLanguage:          b.getLanguage,
		CmdStartDeviceTelemetry: b.startDeviceTelemetry,
		CmdStopDeviceTelemetry:  b.stopDeviceTelemetry,
		CmdStartAppTelemetry:    b.startApplicationTelemetry,
		CmdStopAppTelemetry:     b.stopApplicationTelemetry,
	}
}

// Commands returns the command topics served, relative to the prefix.
func (b *Bridge) Commands() []string {
	routes := b.routes()
	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register installs a handler for every command.
func (b *Bridge) Register(ctx context.Context) error {
	routes := b.routes()
	for _, name := range b.Commands() {
		if err := b.Bus.Handle(ctx, Topic(b.cfg, name), routes[name]); err != nil {
			return err
		}
	}
	b.log.Info("Registered %d command handlers under %q", len(routes), b.cfg.TopicPrefix)
	return nil
}

// PublishState publishes the retained version and device-info documents.
// Device info is skipped with a warning when the device cannot provide it.
func (b *Bridge) PublishState(ctx context.Context) error {
	versionTopic := Topic(b.cfg, b.cfg.VersionTopic)
	if err := b.Conn.Publish(ctx, versionTopic, message.Version(b.version, b.startedAt), mqtt.WithRetained()); err != nil {
		return fmt.Errorf("failed to publish version: %w", err)
	}

	info, err := b.Device.Info(ctx)
	if err != nil {
		b.log.WarnWithFields(logrus.Fields{"topic": b.cfg.DeviceInfoTopic}, "Device info unavailable: %v", err)
		return nil
	}
	if err := b.Conn.Publish(ctx, Topic(b.cfg, b.cfg.DeviceInfoTopic), info, mqtt.WithRetained()); err != nil {
		return fmt.Errorf("failed to publish device info: %w", err)
	}
	return nil
}
