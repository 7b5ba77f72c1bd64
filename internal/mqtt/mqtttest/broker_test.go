package mqtttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ibs-source/rc-bridge/internal/mqtt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToMatchingSubscriptions(t *testing.T) {
	b := New()
	ctx := context.Background()

	var got []mqtt.Message
	require.NoError(t, b.Subscribe(ctx, "applications/list/+", func(m mqtt.Message) {
		got = append(got, m)
	}))

	require.NoError(t, b.Publish(ctx, "applications/list/1", map[string]int{"status": 200}))
	require.NoError(t, b.Publish(ctx, "applications/launch/1", []byte(`{}`)))

	require.Len(t, got, 1)
	assert.Equal(t, "applications/list/1", got[0].Topic)
	assert.JSONEq(t, `{"status":200}`, string(got[0].Payload))
	assert.Equal(t, byte(2), got[0].QoS)
}

func TestBroker_RetainedReplayAndClear(t *testing.T) {
	b := New()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, "bridge/version", []byte(`{"version":"1"}`), mqtt.WithRetained()))

	var replayed []mqtt.Message
	require.NoError(t, b.Subscribe(ctx, "bridge/#", func(m mqtt.Message) { replayed = append(replayed, m) }))
	require.Len(t, replayed, 1)
	assert.True(t, replayed[0].Retained)

	require.NoError(t, b.Publish(ctx, "bridge/version", []byte{}, mqtt.WithRetained()))
	_, ok := b.Retained("bridge/version")
	assert.False(t, ok)
}

func TestBroker_FailureInjection(t *testing.T) {
	b := New()
	ctx := context.Background()
	boom := errors.New("boom")

	b.FailPublish("device/#", boom)
	assert.ErrorIs(t, b.Publish(ctx, "device/info/1", []byte(`{}`)), boom)
	assert.Empty(t, b.Published())

	b.FailPublish("device/#", nil)
	assert.NoError(t, b.Publish(ctx, "device/info/1", []byte(`{}`)))

	b.FailSubscribe(boom)
	assert.ErrorIs(t, b.Subscribe(ctx, "a/+", func(mqtt.Message) {}), boom)
}

func TestBroker_MalformedPayloadNormalized(t *testing.T) {
	b := New()
	ctx := context.Background()

	var got mqtt.Message
	require.NoError(t, b.Subscribe(ctx, "x/+", func(m mqtt.Message) { got = m }))
	b.Deliver("x/1", []byte("garbage"))

	assert.True(t, got.Malformed)
	assert.Contains(t, string(got.Payload), `"error":"failed to parse msg"`)
}

func TestBroker_WaitFor(t *testing.T) {
	b := New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = b.Publish(context.Background(), "a/b", []byte(`1`))
	}()

	recs, ok := b.WaitFor("a/#", 1, time.Second)
	require.True(t, ok)
	assert.Equal(t, "a/b", recs[0].Topic)

	_, ok = b.WaitFor("never", 1, 20*time.Millisecond)
	assert.False(t, ok)
}
