package config

import (
	"testing"
)

func TestValidate_Success(t *testing.T) {
	if err := Validate(defaultConfig()); err != nil {
		t.Errorf("Validate() failed for default config: %v", err)
	}
}

type validationTest struct {
	name      string
	mutate    func(cfg *Config)
	wantError bool
}

func TestValidate(t *testing.T) {
	tests := []validationTest{
		{name: "empty broker", mutate: func(c *Config) { c.MQTT.Broker = "" }, wantError: true},
		{name: "broker without scheme", mutate: func(c *Config) { c.MQTT.Broker = "localhost:1883" }, wantError: true},
		{name: "empty client id", mutate: func(c *Config) { c.MQTT.ClientID = "" }, wantError: true},
		{name: "qos out of range", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantError: true},
		{name: "wildcard in metrics topic", mutate: func(c *Config) { c.Bridge.MetricsTopic = "bridge/+" }, wantError: true},
		{name: "empty messages topic", mutate: func(c *Config) { c.Bridge.MessagesTopic = "" }, wantError: true},
		{name: "wildcard prefix", mutate: func(c *Config) { c.Bridge.TopicPrefix = "#" }, wantError: true},
		{name: "zero request timeout", mutate: func(c *Config) { c.Bridge.RequestTimeout = 0 }, wantError: true},
		{name: "negative failure limit", mutate: func(c *Config) { c.Bridge.TelemetryFailureLimit = -1 }, wantError: true},
		{name: "empty device binary", mutate: func(c *Config) { c.Device.Binary = "" }, wantError: true},
		{name: "zero attach retries", mutate: func(c *Config) { c.Device.AttachRetries = 0 }, wantError: true},
		{name: "journal disabled ignores stream", mutate: func(c *Config) { c.Journal.Stream = "" }, wantError: false},
		{name: "journal enabled without stream", mutate: func(c *Config) {
			c.Journal.Address = "localhost:6379"
			c.Journal.Stream = ""
		}, wantError: true},
		{name: "influxdb enabled without org", mutate: func(c *Config) { c.InfluxDB.URL = "http://influx:8086" }, wantError: true},
		{name: "influxdb enabled", mutate: func(c *Config) {
			c.InfluxDB.URL = "http://influx:8086"
			c.InfluxDB.Org = "home"
		}, wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
