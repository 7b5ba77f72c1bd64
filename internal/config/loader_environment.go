package config

import (
	"os"
	"strconv"
	"time"
)

// loadMQTTFromEnv loads MQTT configuration from environment variables
func loadMQTTFromEnv(cfg *MQTTConfig) {
	loadMQTTStrings(cfg)
	loadMQTTInts(cfg)
	loadMQTTTimeouts(cfg)
	loadMQTTTLS(cfg)
	loadMQTTBools(cfg)
}

func loadMQTTStrings(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := getEnvString("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := getEnvString("MQTT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := getEnvString("MQTT_PASSWORD"); v != "" {
		cfg.Password = v
	}
}

func loadMQTTInts(cfg *MQTTConfig) {
	if v, ok := lookupEnvInt("MQTT_QOS"); ok && v >= 0 && v <= 2 {
		cfg.QoS = byte(v) // #nosec G115 - validated range 0-2
	}
	if v := getEnvInt("MQTT_DISCONNECT_TIMEOUT"); v > 0 {
		cfg.DisconnectTimeout = uint(v) // #nosec G115 - checked positive
	}
}

func loadMQTTTimeouts(cfg *MQTTConfig) {
	if v := getEnvDuration("MQTT_KEEP_ALIVE"); v != 0 {
		cfg.KeepAlive = v
	}
	if v := getEnvDuration("MQTT_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
	if v := getEnvDuration("MQTT_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL"); v != 0 {
		cfg.MaxReconnectInterval = v
	}
	if v := getEnvDuration("MQTT_SUBSCRIBE_TIMEOUT"); v != 0 {
		cfg.SubscribeTimeout = v
	}
}

func loadMQTTTLS(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := getEnvString("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := getEnvString("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
}

func loadMQTTBools(cfg *MQTTConfig) {
	if v := getEnvBool("MQTT_TLS_ENABLED"); v {
		cfg.TLSEnabled = v
	}
	if v := getEnvBool("MQTT_TLS_INSECURE_SKIP"); v {
		cfg.InsecureSkip = v
	}
	if v := getEnvBool("MQTT_USE_CERT_CN_PREFIX"); v {
		cfg.UseCertCNPrefix = v
	}
}

// loadBridgeFromEnv loads topic layout and timeouts from environment variables
func loadBridgeFromEnv(cfg *BridgeConfig) {
	if v := getEnvString("BRIDGE_TOPIC_PREFIX"); v != "" {
		cfg.TopicPrefix = v
	}
	if v := getEnvString("BRIDGE_VERSION_TOPIC"); v != "" {
		cfg.VersionTopic = v
	}
	if v := getEnvString("BRIDGE_DEVICE_INFO_TOPIC"); v != "" {
		cfg.DeviceInfoTopic = v
	}
	if v := getEnvString("BRIDGE_METRICS_TOPIC"); v != "" {
		cfg.MetricsTopic = v
	}
	if v := getEnvString("BRIDGE_MESSAGES_TOPIC"); v != "" {
		cfg.MessagesTopic = v
	}
	if v := getEnvDuration("BRIDGE_REQUEST_TIMEOUT"); v != 0 {
		cfg.RequestTimeout = v
	}
	if v := getEnvDuration("BRIDGE_SHUTDOWN_TIMEOUT"); v != 0 {
		cfg.ShutdownTimeout = v
	}
	if v := getEnvInt("BRIDGE_TELEMETRY_FAILURE_LIMIT"); v != 0 {
		cfg.TelemetryFailureLimit = v
	}
}

// loadDeviceFromEnv loads debug transport settings from environment variables
func loadDeviceFromEnv(cfg *DeviceConfig) {
	if v := getEnvString("DEVICE_BINARY"); v != "" {
		cfg.Binary = v
	}
	if v := getEnvString("DEVICE_SERIAL"); v != "" {
		cfg.Serial = v
	}
	if v := getEnvString("DEVICE_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("DEVICE_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := getEnvDuration("DEVICE_COMMAND_TIMEOUT"); v != 0 {
		cfg.CommandTimeout = v
	}
	if v := getEnvInt("DEVICE_ATTACH_RETRIES"); v != 0 {
		cfg.AttachRetries = v
	}
}

// loadJournalFromEnv loads Redis journal settings from environment variables
func loadJournalFromEnv(cfg *JournalConfig) {
	if v := getEnvString("JOURNAL_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("JOURNAL_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := getEnvInt("JOURNAL_DB"); v != 0 {
		cfg.DB = v
	}
	if v := getEnvString("JOURNAL_STREAM"); v != "" {
		cfg.Stream = v
	}
	if v := getEnvInt("JOURNAL_MAX_LEN"); v != 0 {
		cfg.MaxLen = int64(v)
	}
	if v := getEnvDuration("JOURNAL_RETENTION"); v != 0 {
		cfg.Retention = v
	}
	if v := getEnvDuration("JOURNAL_CLEANUP_INTERVAL"); v != 0 {
		cfg.CleanupInterval = v
	}
	if v := getEnvDuration("JOURNAL_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("JOURNAL_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
}

// loadInfluxDBFromEnv loads telemetry sink settings from environment variables
func loadInfluxDBFromEnv(cfg *InfluxDBConfig) {
	if v := getEnvString("INFLUXDB_URL"); v != "" {
		cfg.URL = v
	}
	if v := getEnvString("INFLUXDB_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := getEnvString("INFLUXDB_ORG"); v != "" {
		cfg.Org = v
	}
	if v := getEnvString("INFLUXDB_BUCKET"); v != "" {
		cfg.Bucket = v
	}
	if v := getEnvInt("INFLUXDB_BATCH_SIZE"); v != 0 {
		cfg.BatchSize = v
	}
	if v := getEnvDuration("INFLUXDB_FLUSH_INTERVAL"); v != 0 {
		cfg.FlushInterval = v
	}
}

// loadMetricsFromEnv loads Prometheus endpoint settings from environment variables
func loadMetricsFromEnv(cfg *MetricsConfig) {
	if v := getEnvString("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("METRICS_PATH"); v != "" {
		cfg.Path = v
	}
}

// Helper functions for reading environment variables

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	v, _ := lookupEnvInt(key)
	return v
}

// lookupEnvInt distinguishes an unset variable from an explicit zero.
func lookupEnvInt(key string) (int, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return intValue, true
}

func getEnvDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}

func getEnvBool(key string) bool {
	value := os.Getenv(key)
	return value == "true"
}
