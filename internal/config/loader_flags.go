package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	// MQTT flags
	flagMQTTBroker            = flag.String("mqtt-broker", "", "MQTT broker URI")
	flagMQTTClientID          = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTUsername          = flag.String("mqtt-username", "", "MQTT username")
	flagMQTTPassword          = flag.String("mqtt-password", "", "MQTT password")
	flagMQTTQoS               = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTKeepAlive         = flag.Duration("mqtt-keep-alive", 0, "MQTT keep-alive interval")
	flagMQTTConnectTimeout    = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout      = flag.Duration("mqtt-write-timeout", 0, "MQTT write timeout")
	flagMQTTMaxReconnect      = flag.Duration("mqtt-max-reconnect-interval", 0, "MQTT max reconnect interval")
	flagMQTTSubscribeTimeout  = flag.Duration("mqtt-subscribe-timeout", 0, "MQTT subscribe timeout")
	flagMQTTDisconnectTimeout = flag.Int("mqtt-disconnect-timeout", 0, "MQTT disconnect timeout (ms)")
	flagMQTTTLSEnabled        = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert            = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert        = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey         = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip   = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")
	// Prefix topics with client cert CN (for ACL constraints)
	flagMQTTUseCertCNPrefix = flag.Bool("mqtt-use-cert-cn-prefix", false, "Prefix topics with client cert CN")

	// Bridge flags
	flagBridgeTopicPrefix      = flag.String("bridge-topic-prefix", "", "Prefix for every bridge topic")
	flagBridgeVersionTopic     = flag.String("bridge-version-topic", "", "Retained version topic")
	flagBridgeDeviceInfoTopic  = flag.String("bridge-device-info-topic", "", "Retained device information topic")
	flagBridgeMetricsTopic     = flag.String("bridge-metrics-topic", "", "Telemetry topic")
	flagBridgeMessagesTopic    = flag.String("bridge-messages-topic", "", "Notification topic")
	flagBridgeRequestTimeout   = flag.Duration("bridge-request-timeout", 0, "Default request timeout")
	flagBridgeShutdownTimeout  = flag.Duration("bridge-shutdown-timeout", 0, "Graceful shutdown timeout")
	flagBridgeTelemetryFailure = flag.Int("bridge-telemetry-failure-limit", 0, "Consecutive producer failures that stop a telemetry session")

	// Device flags
	flagDeviceBinary         = flag.String("device-binary", "", "Debug transport executable")
	flagDeviceSerial         = flag.String("device-serial", "", "Debug transport device serial")
	flagDeviceAddress        = flag.String("device-address", "", "Network address to attach the debug transport to")
	flagDeviceProfile        = flag.String("device-profile", "", "Platform table YAML path")
	flagDeviceCommandTimeout = flag.Duration("device-command-timeout", 0, "Device command timeout")
	flagDeviceAttachRetries  = flag.Int("device-attach-retries", 0, "Attach attempts before giving up")

	// Journal flags
	flagJournalAddress   = flag.String("journal-address", "", "Redis address for the command journal")
	flagJournalStream    = flag.String("journal-stream", "", "Redis stream for the command journal")
	flagJournalMaxLen    = flag.Int("journal-max-len", 0, "Approximate journal stream length cap")
	flagJournalRetention = flag.Duration("journal-retention", 0, "Journal entry retention")

	// InfluxDB flags
	flagInfluxDBURL    = flag.String("influxdb-url", "", "InfluxDB URL for telemetry history")
	flagInfluxDBOrg    = flag.String("influxdb-org", "", "InfluxDB organization")
	flagInfluxDBBucket = flag.String("influxdb-bucket", "", "InfluxDB bucket")

	// Metrics flags
	flagMetricsAddress = flag.String("metrics-address", "", "Prometheus listen address")
	flagMetricsPath    = flag.String("metrics-path", "", "Prometheus endpoint path")

	flagLogLevel = flag.String("log-level", "", "Log level (trace, debug, info, warn, error)")
)

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagTimeouts(cfg)
	applyMQTTFlagTLS(cfg)
	applyMQTTFlagBools(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTUsername != "" {
		cfg.Username = *flagMQTTUsername
	}
	if *flagMQTTPassword != "" {
		cfg.Password = *flagMQTTPassword
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTQoS != -1 && *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
	if *flagMQTTDisconnectTimeout > 0 {
		cfg.DisconnectTimeout = uint(*flagMQTTDisconnectTimeout) // #nosec G115 - checked positive
	}
}

func applyMQTTFlagTimeouts(cfg *MQTTConfig) {
	if *flagMQTTKeepAlive != 0 {
		cfg.KeepAlive = *flagMQTTKeepAlive
	}
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTWriteTimeout != 0 {
		cfg.WriteTimeout = *flagMQTTWriteTimeout
	}
	if *flagMQTTMaxReconnect != 0 {
		cfg.MaxReconnectInterval = *flagMQTTMaxReconnect
	}
	if *flagMQTTSubscribeTimeout != 0 {
		cfg.SubscribeTimeout = *flagMQTTSubscribeTimeout
	}
}

func applyMQTTFlagTLS(cfg *MQTTConfig) {
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
	if *flagMQTTClientCert != "" {
		cfg.ClientCert = *flagMQTTClientCert
	}
	if *flagMQTTClientKey != "" {
		cfg.ClientKey = *flagMQTTClientKey
	}
}

func applyMQTTFlagBools(cfg *MQTTConfig) {
	// Handle bool flags - check if explicitly set
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
	if isFlagSet("mqtt-use-cert-cn-prefix") {
		cfg.UseCertCNPrefix = *flagMQTTUseCertCNPrefix
	}
}

// applyBridgeFlags applies command line flags to the bridge configuration
func applyBridgeFlags(cfg *BridgeConfig) {
	if *flagBridgeTopicPrefix != "" {
		cfg.TopicPrefix = *flagBridgeTopicPrefix
	}
	if *flagBridgeVersionTopic != "" {
		cfg.VersionTopic = *flagBridgeVersionTopic
	}
	if *flagBridgeDeviceInfoTopic != "" {
		cfg.DeviceInfoTopic = *flagBridgeDeviceInfoTopic
	}
	if *flagBridgeMetricsTopic != "" {
		cfg.MetricsTopic = *flagBridgeMetricsTopic
	}
	if *flagBridgeMessagesTopic != "" {
		cfg.MessagesTopic = *flagBridgeMessagesTopic
	}
	if *flagBridgeRequestTimeout != 0 {
		cfg.RequestTimeout = *flagBridgeRequestTimeout
	}
	if *flagBridgeShutdownTimeout != 0 {
		cfg.ShutdownTimeout = *flagBridgeShutdownTimeout
	}
	if *flagBridgeTelemetryFailure != 0 {
		cfg.TelemetryFailureLimit = *flagBridgeTelemetryFailure
	}
}

// applyDeviceFlags applies command line flags to the device configuration
func applyDeviceFlags(cfg *DeviceConfig) {
	if *flagDeviceBinary != "" {
		cfg.Binary = *flagDeviceBinary
	}
	if *flagDeviceSerial != "" {
		cfg.Serial = *flagDeviceSerial
	}
	if *flagDeviceAddress != "" {
		cfg.Address = *flagDeviceAddress
	}
	if *flagDeviceProfile != "" {
		cfg.Profile = *flagDeviceProfile
	}
	if *flagDeviceCommandTimeout != 0 {
		cfg.CommandTimeout = *flagDeviceCommandTimeout
	}
	if *flagDeviceAttachRetries != 0 {
		cfg.AttachRetries = *flagDeviceAttachRetries
	}
}

// applyJournalFlags applies command line flags to the journal configuration
func applyJournalFlags(cfg *JournalConfig) {
	if *flagJournalAddress != "" {
		cfg.Address = *flagJournalAddress
	}
	if *flagJournalStream != "" {
		cfg.Stream = *flagJournalStream
	}
	if *flagJournalMaxLen != 0 {
		cfg.MaxLen = int64(*flagJournalMaxLen)
	}
	if *flagJournalRetention != 0 {
		cfg.Retention = *flagJournalRetention
	}
}

// applyInfluxDBFlags applies command line flags to the telemetry sink configuration
func applyInfluxDBFlags(cfg *InfluxDBConfig) {
	if *flagInfluxDBURL != "" {
		cfg.URL = *flagInfluxDBURL
	}
	if *flagInfluxDBOrg != "" {
		cfg.Org = *flagInfluxDBOrg
	}
	if *flagInfluxDBBucket != "" {
		cfg.Bucket = *flagInfluxDBBucket
	}
}

// applyMetricsFlags applies command line flags to the metrics configuration
func applyMetricsFlags(cfg *MetricsConfig) {
	if *flagMetricsAddress != "" {
		cfg.Address = *flagMetricsAddress
	}
	if *flagMetricsPath != "" {
		cfg.Path = *flagMetricsPath
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
