package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"smarthome-sim/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeClient records publishes; other client methods are not used by the sink
type fakeClient struct {
	mqtt.Client
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return &doneToken{err: f.err}
}

func TestMQTTSink_PublishesRetainedState(t *testing.T) {
	client := &fakeClient{}
	sink := NewMQTTSink(client, 1)
	ctx := context.Background()

	require.NoError(t, sink.PublishSensors(ctx, models.SeedSensors()))
	require.NoError(t, sink.PublishDevices(ctx, models.SeedDevices()[:1]))
	require.NoError(t, sink.PublishHistory(ctx, models.HistoryPoint{Time: "12:00:00", Light: 800}))

	require.Len(t, client.msgs, 5)
	assert.Equal(t, "sensors/s1/state", client.msgs[0].topic)
	assert.True(t, client.msgs[0].retained)
	assert.Equal(t, "devices/d1/state", client.msgs[3].topic)
	assert.Equal(t, HistoryTopic, client.msgs[4].topic)
	assert.False(t, client.msgs[4].retained)

	var s models.Sensor
	require.NoError(t, json.Unmarshal(client.msgs[2].payload, &s))
	assert.Equal(t, "s3", s.ID)
	assert.Equal(t, 850.0, s.Value)
}

func TestMQTTSink_PublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	sink := NewMQTTSink(client, 0)

	err := sink.PublishDevices(context.Background(), models.SeedDevices())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devices/d1/state")
	assert.Len(t, client.msgs, 1, "stops at the first failure")
}
