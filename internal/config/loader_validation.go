package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateMQTT(&cfg.MQTT); err != nil {
		return err
	}
	if err := validateBridge(&cfg.Bridge); err != nil {
		return err
	}
	if err := validateDevice(&cfg.Device); err != nil {
		return err
	}
	if err := validateJournal(&cfg.Journal); err != nil {
		return err
	}
	return validateInfluxDB(&cfg.InfluxDB)
}

// validateMQTT validates MQTT configuration
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return fmt.Errorf("mqtt broker cannot be empty")
	}
	if !strings.Contains(cfg.Broker, "://") {
		return fmt.Errorf("mqtt broker must be a URI (scheme://host:port)")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if cfg.ConnectTimeout <= 0 {
		return fmt.Errorf("mqtt connect timeout must be positive")
	}
	return nil
}

// validateBridge validates the topic layout
func validateBridge(cfg *BridgeConfig) error {
	topics := map[string]string{
		"version":     cfg.VersionTopic,
		"device info": cfg.DeviceInfoTopic,
		"metrics":     cfg.MetricsTopic,
		"messages":    cfg.MessagesTopic,
	}
	for name, topic := range topics {
		if topic == "" {
			return fmt.Errorf("bridge %s topic cannot be empty", name)
		}
		if strings.ContainsAny(topic, "+#") {
			return fmt.Errorf("bridge %s topic cannot contain wildcards", name)
		}
	}
	if strings.ContainsAny(cfg.TopicPrefix, "+#") {
		return fmt.Errorf("bridge topic prefix cannot contain wildcards")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("bridge request timeout must be positive")
	}
	if cfg.TelemetryFailureLimit < 0 {
		return fmt.Errorf("bridge telemetry failure limit cannot be negative")
	}
	return nil
}

// validateDevice validates the debug transport configuration
func validateDevice(cfg *DeviceConfig) error {
	if cfg.Binary == "" {
		return fmt.Errorf("device binary cannot be empty")
	}
	if cfg.CommandTimeout <= 0 {
		return fmt.Errorf("device command timeout must be positive")
	}
	if cfg.AttachRetries < 1 {
		return fmt.Errorf("device attach retries must be positive")
	}
	return nil
}

// validateJournal validates the journal configuration when enabled
func validateJournal(cfg *JournalConfig) error {
	if cfg.Address == "" {
		return nil
	}
	if cfg.Stream == "" {
		return fmt.Errorf("journal stream cannot be empty")
	}
	if cfg.MaxLen < 1 {
		return fmt.Errorf("journal max length must be positive")
	}
	return nil
}

// validateInfluxDB validates the telemetry sink configuration when enabled
func validateInfluxDB(cfg *InfluxDBConfig) error {
	if cfg.URL == "" {
		return nil
	}
	if cfg.Org == "" {
		return fmt.Errorf("influxdb org cannot be empty")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("influxdb bucket cannot be empty")
	}
	return nil
}
