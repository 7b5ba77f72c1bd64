package config

import (
	"testing"
	"time"
)

func TestConfigStructure(t *testing.T) {
	cfg := Config{
		MQTT:     MQTTConfig{Broker: testMQTTBroker},
		Bridge:   BridgeConfig{TopicPrefix: "tv"},
		Device:   DeviceConfig{Binary: "adb"},
		Journal:  JournalConfig{Address: "localhost:6379"},
		InfluxDB: InfluxDBConfig{URL: "http://localhost:8086"},
		Metrics:  MetricsConfig{Address: ":9090"},
		LogLevel: "debug",
	}

	if cfg.MQTT.Broker != testMQTTBroker {
		t.Errorf("MQTT.Broker = %s; want %s", cfg.MQTT.Broker, testMQTTBroker)
	}
	if cfg.Bridge.TopicPrefix != "tv" {
		t.Errorf("Bridge.TopicPrefix = %s; want tv", cfg.Bridge.TopicPrefix)
	}
	if cfg.Device.Binary != "adb" {
		t.Errorf("Device.Binary = %s; want adb", cfg.Device.Binary)
	}
	if cfg.Journal.Address != "localhost:6379" {
		t.Errorf("Journal.Address = %s; want localhost:6379", cfg.Journal.Address)
	}
	if cfg.InfluxDB.URL != "http://localhost:8086" {
		t.Errorf("InfluxDB.URL = %s; want http://localhost:8086", cfg.InfluxDB.URL)
	}
	if cfg.Metrics.Address != ":9090" {
		t.Errorf("Metrics.Address = %s; want :9090", cfg.Metrics.Address)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s; want debug", cfg.LogLevel)
	}
}

func TestMQTTConfigStructure(t *testing.T) {
	cfg := MQTTConfig{
		Broker:            "ssl://broker:8883",
		ClientID:          "living-room",
		QoS:               1,
		KeepAlive:         15 * time.Second,
		DisconnectTimeout: 500,
		TLSEnabled:        true,
		CACert:            "/etc/ca.pem",
		UseCertCNPrefix:   true,
	}

	if cfg.Broker != "ssl://broker:8883" {
		t.Errorf("Broker = %s; want ssl://broker:8883", cfg.Broker)
	}
	if cfg.ClientID != "living-room" {
		t.Errorf("ClientID = %s; want living-room", cfg.ClientID)
	}
	if cfg.QoS != 1 {
		t.Errorf("QoS = %d; want 1", cfg.QoS)
	}
	if cfg.KeepAlive != 15*time.Second {
		t.Errorf("KeepAlive = %v; want 15s", cfg.KeepAlive)
	}
	if cfg.DisconnectTimeout != 500 {
		t.Errorf("DisconnectTimeout = %d; want 500", cfg.DisconnectTimeout)
	}
	if !cfg.TLSEnabled || !cfg.UseCertCNPrefix {
		t.Errorf("TLSEnabled = %v, UseCertCNPrefix = %v; want both true", cfg.TLSEnabled, cfg.UseCertCNPrefix)
	}
	if cfg.CACert != "/etc/ca.pem" {
		t.Errorf("CACert = %s; want /etc/ca.pem", cfg.CACert)
	}
}

func TestBridgeConfigStructure(t *testing.T) {
	cfg := BridgeConfig{
		TopicPrefix:           "tv",
		VersionTopic:          "v",
		DeviceInfoTopic:       "d",
		MetricsTopic:          "m",
		MessagesTopic:         "n",
		RequestTimeout:        2 * time.Second,
		ShutdownTimeout:       4 * time.Second,
		TelemetryFailureLimit: 3,
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"TopicPrefix", cfg.TopicPrefix, "tv"},
		{"VersionTopic", cfg.VersionTopic, "v"},
		{"DeviceInfoTopic", cfg.DeviceInfoTopic, "d"},
		{"MetricsTopic", cfg.MetricsTopic, "m"},
		{"MessagesTopic", cfg.MessagesTopic, "n"},
		{"RequestTimeout", cfg.RequestTimeout, 2 * time.Second},
		{"ShutdownTimeout", cfg.ShutdownTimeout, 4 * time.Second},
		{"TelemetryFailureLimit", cfg.TelemetryFailureLimit, 3},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v; want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestDeviceConfigStructure(t *testing.T) {
	cfg := DeviceConfig{
		Binary:         "/usr/bin/adb",
		Serial:         "R58M123",
		Address:        "192.168.1.20:5555",
		Profile:        "/etc/rc-bridge/table.yaml",
		CommandTimeout: 3 * time.Second,
		AttachRetries:  2,
	}

	if cfg.Binary != "/usr/bin/adb" {
		t.Errorf("Binary = %s; want /usr/bin/adb", cfg.Binary)
	}
	if cfg.Serial != "R58M123" {
		t.Errorf("Serial = %s; want R58M123", cfg.Serial)
	}
	if cfg.Address != "192.168.1.20:5555" {
		t.Errorf("Address = %s; want 192.168.1.20:5555", cfg.Address)
	}
	if cfg.Profile != "/etc/rc-bridge/table.yaml" {
		t.Errorf("Profile = %s; want /etc/rc-bridge/table.yaml", cfg.Profile)
	}
	if cfg.CommandTimeout != 3*time.Second {
		t.Errorf("CommandTimeout = %v; want 3s", cfg.CommandTimeout)
	}
	if cfg.AttachRetries != 2 {
		t.Errorf("AttachRetries = %d; want 2", cfg.AttachRetries)
	}
}

func TestJournalConfigStructure(t *testing.T) {
	cfg := JournalConfig{
		Address:         "redis:6379",
		Password:        "secret",
		DB:              2,
		Stream:          "journal",
		MaxLen:          500,
		Retention:       time.Hour,
		CleanupInterval: 30 * time.Second,
		DialTimeout:     time.Second,
		PingTimeout:     2 * time.Second,
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Address", cfg.Address, "redis:6379"},
		{"Password", cfg.Password, "secret"},
		{"DB", cfg.DB, 2},
		{"Stream", cfg.Stream, "journal"},
		{"MaxLen", cfg.MaxLen, int64(500)},
		{"Retention", cfg.Retention, time.Hour},
		{"CleanupInterval", cfg.CleanupInterval, 30 * time.Second},
		{"DialTimeout", cfg.DialTimeout, time.Second},
		{"PingTimeout", cfg.PingTimeout, 2 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v; want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestInfluxDBConfigStructure(t *testing.T) {
	cfg := InfluxDBConfig{
		URL:           "http://influx:8086",
		Token:         "token",
		Org:           "home",
		Bucket:        "tv",
		BatchSize:     50,
		FlushInterval: 5 * time.Second,
	}

	if cfg.URL != "http://influx:8086" {
		t.Errorf("URL = %s; want http://influx:8086", cfg.URL)
	}
	if cfg.Token != "token" {
		t.Errorf("Token = %s; want token", cfg.Token)
	}
	if cfg.Org != "home" {
		t.Errorf("Org = %s; want home", cfg.Org)
	}
	if cfg.Bucket != "tv" {
		t.Errorf("Bucket = %s; want tv", cfg.Bucket)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d; want 50", cfg.BatchSize)
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %v; want 5s", cfg.FlushInterval)
	}
}

func TestMetricsConfigStructure(t *testing.T) {
	cfg := MetricsConfig{Address: "127.0.0.1:9100", Path: "/prom"}

	if cfg.Address != "127.0.0.1:9100" {
		t.Errorf("Address = %s; want 127.0.0.1:9100", cfg.Address)
	}
	if cfg.Path != "/prom" {
		t.Errorf("Path = %s; want /prom", cfg.Path)
	}
}
