// Package influxdb keeps a history of telemetry samples in InfluxDB.
package influxdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// Measurement is the measurement every sample is written to.
const Measurement = "telemetry"

const defaultPingTimeout = 5 * time.Second

// Sink errors.
var (
	ErrDisabled         = errors.New("influxdb sink disabled: no URL configured")
	ErrConnectionFailed = errors.New("influxdb connection failed")
)

// pointWriter is the subset of api.WriteAPI the sink uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Sink writes the numeric and boolean fields of each sample as one point,
// tagged with the session target and application id. Writes are batched
// and non-blocking; failures are logged.
type Sink struct {
	client influxdb2.Client
	writer pointWriter
	log    *log.Logger
}

var _ telemetry.Sink = (*Sink)(nil)

// Connect creates the client, verifies the server with a ping and starts
// draining asynchronous write errors into the log.
func Connect(cfg *config.InfluxDBConfig, logger *log.Logger) (*Sink, error) {
	if cfg.URL == "" {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval.Milliseconds())),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	s := &Sink{client: client, writer: writeAPI, log: logger}
	go s.logErrors(writeAPI.Errors())

	logger.Info("Telemetry history enabled: bucket '%s' on %s", cfg.Bucket, cfg.URL)
	return s, nil
}

func (s *Sink) logErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		s.log.Warn("InfluxDB write failed: %v", err)
	}
}

// Write queues one sample. Samples without numeric or boolean fields are
// skipped.
func (s *Sink) Write(key telemetry.Key, at time.Time, sample []byte) {
	point, err := NewPoint(key, at, sample)
	if err != nil {
		s.log.DebugWithFields(logrus.Fields{"session": key.String()}, "Sample not written: %v", err)
		return
	}
	s.writer.WritePoint(point)
}

// Close flushes pending points and closes the client.
func (s *Sink) Close() {
	s.writer.Flush()
	if s.client != nil {
		s.client.Close()
	}
}

// NewPoint converts a JSON sample into a point.
func NewPoint(key telemetry.Key, at time.Time, sample []byte) (*write.Point, error) {
	var doc map[string]any
	if err := json.Unmarshal(sample, &doc); err != nil {
		return nil, fmt.Errorf("sample is not a JSON object: %w", err)
	}

	fields := make(map[string]any)
	flatten("", doc, fields)
	if len(fields) == 0 {
		return nil, errors.New("sample has no numeric fields")
	}

	tags := map[string]string{"target": key.Target().String()}
	if appID := key.AppID(); appID != "" {
		tags["appId"] = appID
	}
	return influxdb2.NewPoint(Measurement, tags, fields, at), nil
}

// flatten collects numeric and boolean leaves, joining nested keys with dots.
func flatten(prefix string, doc map[string]any, out map[string]any) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := doc[k].(type) {
		case float64, bool:
			out[name] = v
		case map[string]any:
			flatten(name, v, out)
		}
	}
}
