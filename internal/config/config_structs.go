// Package config provides configuration loading and validation from environment variables and command line flags.
package config

import "time"

// Config holds the complete configuration
type Config struct {
	MQTT     MQTTConfig
	Bridge   BridgeConfig
	Device   DeviceConfig
	Journal  JournalConfig
	InfluxDB InfluxDBConfig
	Metrics  MetricsConfig
	LogLevel string
}

// MQTTConfig holds the broker connection settings
type MQTTConfig struct {
	Broker               string // URI: scheme://host:port
	ClientID             string
	Username             string
	Password             string
	QoS                  byte
	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	WriteTimeout         time.Duration
	SubscribeTimeout     time.Duration
	MaxReconnectInterval time.Duration
	DisconnectTimeout    uint // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled      bool
	CACert          string
	ClientCert      string
	ClientKey       string
	InsecureSkip    bool
	UseCertCNPrefix bool // If true, prefix topics with cert CN for ACL constraints
}

// BridgeConfig holds topic layout and request/session settings
type BridgeConfig struct {
	TopicPrefix     string
	VersionTopic    string
	DeviceInfoTopic string
	MetricsTopic    string
	MessagesTopic   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// Consecutive producer failures after which a telemetry session stops itself; 0 never stops.
	TelemetryFailureLimit int
}

// DeviceConfig holds the debug transport settings
type DeviceConfig struct {
	Binary         string
	Serial         string
	Address        string // Network target to attach before use, empty for USB/local targets
	Profile        string // Platform table path, empty for the embedded default
	CommandTimeout time.Duration
	AttachRetries  int
}

// JournalConfig holds the Redis command journal settings. An empty Address disables the journal.
type JournalConfig struct {
	Address         string
	Password        string
	DB              int
	Stream          string
	MaxLen          int64
	Retention       time.Duration
	CleanupInterval time.Duration
	DialTimeout     time.Duration
	PingTimeout     time.Duration
}

// InfluxDBConfig holds the telemetry history sink settings. An empty URL disables the sink.
type InfluxDBConfig struct {
	URL           string
	Token         string
	Org           string
	Bucket        string
	BatchSize     int
	FlushInterval time.Duration
}

// MetricsConfig holds the Prometheus endpoint settings. An empty Address disables the endpoint.
type MetricsConfig struct {
	Address string
	Path    string
}
