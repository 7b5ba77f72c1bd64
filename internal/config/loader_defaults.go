package config

import "time"

// defaultMQTTConfig returns the default MQTT configuration
func defaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:               "tcp://localhost:1883",
		ClientID:             "rc-bridge",
		QoS:                  2,
		KeepAlive:            30 * time.Second,
		ConnectTimeout:       10 * time.Second,
		WriteTimeout:         10 * time.Second,
		SubscribeTimeout:     10 * time.Second,
		MaxReconnectInterval: 10 * time.Second,
		DisconnectTimeout:    1000,
	}
}

// defaultBridgeConfig returns the default topic layout and timeouts
func defaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		TopicPrefix:           "",
		VersionTopic:          "bridge/version",
		DeviceInfoTopic:       "bridge/device",
		MetricsTopic:          "bridge/metrics",
		MessagesTopic:         "bridge/messages",
		RequestTimeout:        5 * time.Second,
		ShutdownTimeout:       10 * time.Second,
		TelemetryFailureLimit: 0,
	}
}

// defaultDeviceConfig returns the default debug transport configuration
func defaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Binary:         "adb",
		CommandTimeout: 10 * time.Second,
		AttachRetries:  5,
	}
}

// defaultJournalConfig returns the default journal configuration (disabled)
func defaultJournalConfig() JournalConfig {
	return JournalConfig{
		Address:         "",
		Stream:          "rc-bridge-journal",
		MaxLen:          10000,
		Retention:       24 * time.Hour,
		CleanupInterval: 1 * time.Minute,
		DialTimeout:     5 * time.Second,
		PingTimeout:     5 * time.Second,
	}
}

// defaultInfluxDBConfig returns the default telemetry sink configuration (disabled)
func defaultInfluxDBConfig() InfluxDBConfig {
	return InfluxDBConfig{
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 10 * time.Second,
	}
}

// defaultMetricsConfig returns the default metrics endpoint configuration (disabled)
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Path: "/metrics",
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		MQTT:     defaultMQTTConfig(),
		Bridge:   defaultBridgeConfig(),
		Device:   defaultDeviceConfig(),
		Journal:  defaultJournalConfig(),
		InfluxDB: defaultInfluxDBConfig(),
		Metrics:  defaultMetricsConfig(),
		LogLevel: "info",
	}
}
