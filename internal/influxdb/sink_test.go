package influxdb

import (
	"sync"
	"testing"
	"time"

	"github.com/ibs-source/rc-bridge/internal/config"
	"github.com/ibs-source/rc-bridge/internal/log"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushed bool
}

func (w *fakeWriter) WritePoint(p *write.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = append(w.points, p)
}

func (w *fakeWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushed = true
}

func fieldMap(p *write.Point) map[string]any {
	out := make(map[string]any)
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func tagMap(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(&config.InfluxDBConfig{}, log.Discard())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewPoint_DeviceSample(t *testing.T) {
	at := time.Date(2025, 11, 8, 10, 30, 0, 0, time.UTC)
	sample := []byte(`{"memory":{"totalKb":2048,"availableKb":1024},"load1":0.5,"healthy":true,"platform":"android-tv"}`)

	p, err := NewPoint(telemetry.DeviceKey(), at, sample)
	require.NoError(t, err)

	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, at, p.Time())
	assert.Equal(t, map[string]string{"target": "device"}, tagMap(p))
	assert.Equal(t, map[string]any{
		"memory.totalKb":     2048.0,
		"memory.availableKb": 1024.0,
		"load1":              0.5,
		"healthy":            true,
	}, fieldMap(p))
}

func TestNewPoint_ApplicationTags(t *testing.T) {
	p, err := NewPoint(telemetry.AppKey("youtube"), time.Now(), []byte(`{"appId":"youtube","rssKb":512}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"target": "application", "appId": "youtube"}, tagMap(p))
	assert.Equal(t, map[string]any{"rssKb": 512.0}, fieldMap(p))
}

func TestNewPoint_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		sample string
	}{
		{"not an object", `[1,2,3]`},
		{"no numeric fields", `{"state":"running"}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoint(telemetry.DeviceKey(), time.Now(), []byte(tt.sample))
			assert.Error(t, err)
		})
	}
}

func TestSink_WriteAndClose(t *testing.T) {
	w := &fakeWriter{}
	s := &Sink{writer: w, log: log.Discard()}

	s.Write(telemetry.DeviceKey(), time.Now(), []byte(`{"load1":1.25}`))
	s.Write(telemetry.DeviceKey(), time.Now(), []byte(`{"state":"running"}`))
	s.Close()

	assert.Len(t, w.points, 1)
	assert.True(t, w.flushed)
}
