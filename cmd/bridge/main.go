// Package main starts the remote-control bridge binary.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ibs-source/rc-bridge/internal/bridge"
	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/device"
	"github.com/ibs-source/rc-bridge/internal/influxdb"
	"github.com/ibs-source/rc-bridge/internal/journal"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/metrics"
	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/ibs-source/rc-bridge/internal/rpc"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// services are the optional collaborators; nil fields are disabled.
type services struct {
	journal *journal.Journal
	sink    *influxdb.Sink
	metrics *metrics.Metrics
	server  *metrics.Server
}

func run() int {
	logger := log.New()
	logger.Info("Starting rc-bridge %s", version)

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := initializeDevice(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize device: %v", err)
		return 1
	}

	client, err := mqtt.Connect(&cfg.MQTT, logger)
	if err != nil {
		logger.Error("Failed to connect to MQTT broker: %v", err)
		return 1
	}
	logger.Info("Connected to MQTT broker %s", cfg.MQTT.Broker)

	svc := initializeServices(cfg, logger)
	defer closeServices(client, svc, cfg, logger)

	b, loops := assemble(cfg, client, dev, svc, logger)

	err = b.Run(ctx, loops...)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bridge stopped: %v", err)
		return 1
	}
	logger.Info("Bridge stopped")
	return 0
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)

	logger.Info("Configuration loaded successfully")
	logger.Info("MQTT: %s, QoS: %d, Prefix: %q", cfg.MQTT.Broker, cfg.MQTT.QoS, cfg.Bridge.TopicPrefix)
	logger.Info("Device: %s, Serial: %q, Address: %q", cfg.Device.Binary, cfg.Device.Serial, cfg.Device.Address)
	return cfg, nil
}

// initializeDevice loads the platform table and attaches the transport.
func initializeDevice(ctx context.Context, cfg *config.Config, logger *log.Logger) (*device.Shell, error) {
	table, err := device.LoadTable(cfg.Device.Profile)
	if err != nil {
		return nil, err
	}

	serial := cfg.Device.Serial
	if serial == "" {
		serial = cfg.Device.Address
	}
	runner := device.ExecRunner{
		Binary:  cfg.Device.Binary,
		Serial:  serial,
		Timeout: cfg.Device.CommandTimeout,
	}
	shell := device.NewShell(runner, table, device.ShellOptions{
		Serial:        serial,
		Address:       cfg.Device.Address,
		AttachRetries: cfg.Device.AttachRetries,
	}, logger.With(logrus.Fields{"component": "device"}))

	if err := shell.Attach(ctx); err != nil {
		return nil, err
	}
	logger.Info("Device platform: %s", table.Platform())
	return shell, nil
}

// initializeServices connects the optional journal, telemetry sink and
// metrics endpoint. Any that fails to connect is disabled with a warning.
func initializeServices(cfg *config.Config, logger *log.Logger) *services {
	svc := &services{}

	reg := prometheus.NewRegistry()
	svc.metrics = metrics.New(reg)
	if cfg.Metrics.Address != "" {
		svc.server = metrics.NewServer(&cfg.Metrics, reg, logger)
	}

	if cfg.Journal.Address != "" {
		j, err := journal.New(&cfg.Journal, logger)
		if err != nil {
			logger.Warn("Command journal disabled: %v", err)
		} else {
			svc.journal = j
		}
	}

	if cfg.InfluxDB.URL != "" {
		sink, err := influxdb.Connect(&cfg.InfluxDB, logger)
		if err != nil {
			logger.Warn("Telemetry history disabled: %v", err)
		} else {
			svc.sink = sink
		}
	}
	return svc
}

// assemble wires the bus, the session manager and the bridge, and returns
// the background loops to run alongside it.
func assemble(cfg *config.Config, client *mqtt.Client, dev device.Device, svc *services, logger *log.Logger) (*bridge.Bridge, []bridge.Loop) {
	observers := rpc.Observers{svc.metrics}
	var loops []bridge.Loop
	if svc.journal != nil {
		observers = append(observers, svc.journal)
		loops = append(loops, bridge.Loop{Name: "journal", Run: svc.journal.Run})
	}
	if svc.server != nil {
		loops = append(loops, bridge.Loop{Name: "metrics", Run: svc.server.Run})
	}

	bus := rpc.New(client, logger.With(logrus.Fields{"component": "rpc"}),
		rpc.WithTimeout(cfg.Bridge.RequestTimeout),
		rpc.WithObserver(observers),
	)

	notifier := bridge.NewNotifier(client, bridge.Topic(cfg.Bridge, cfg.Bridge.MessagesTopic), logger)

	opts := telemetry.Options{
		Topic:        bridge.Topic(cfg.Bridge, cfg.Bridge.MetricsTopic),
		FailureLimit: cfg.Bridge.TelemetryFailureLimit,
		Notifier:     notifier,
		Hooks:        svc.metrics.Hooks(),
	}
	if svc.sink != nil {
		opts.Sink = svc.sink
	}
	sessions := telemetry.NewManager(client, logger.With(logrus.Fields{"component": "telemetry"}), opts)
	svc.metrics.TrackSessions(sessions.Len)

	b := bridge.New(bridge.Deps{
		Conn:     client,
		Bus:      bus,
		Device:   dev,
		Sessions: sessions,
		Notifier: notifier,
	}, cfg.Bridge, version, logger)
	return b, loops
}

func closeServices(client *mqtt.Client, svc *services, cfg *config.Config, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Bridge.ShutdownTimeout)
	defer cancel()

	if err := client.Close(ctx); err != nil {
		logger.Error("Error closing MQTT client: %v", err)
	}
	if svc.journal != nil {
		if err := svc.journal.Close(); err != nil {
			logger.Error("Error closing journal: %v", err)
		}
	}
	if svc.sink != nil {
		svc.sink.Close()
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
