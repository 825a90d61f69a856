package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smarthome-sim/internal/models"
	"smarthome-sim/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	name string
	err  error

	mu      sync.Mutex
	sensors int
	devices int
	history []models.HistoryPoint
	calls   int
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) PublishSensors(_ context.Context, _ []models.Sensor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.sensors++
	return nil
}

func (r *recordingSink) PublishDevices(_ context.Context, _ []models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.devices++
	return nil
}

func (r *recordingSink) PublishHistory(_ context.Context, p models.HistoryPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.history = append(r.history, p)
	return nil
}

func (r *recordingSink) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sensors, r.devices, len(r.history)
}

func TestFlush_SelectsByChange(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	sink := &recordingSink{name: "rec"}
	d := NewDispatcher(st, DefaultBreakerSettings(), zap.NewNop(), sink)
	ctx := context.Background()

	require.NoError(t, d.Flush(ctx, store.ChangeTheme|store.ChangeRules))
	assert.Equal(t, 0, sink.calls)

	require.NoError(t, d.Flush(ctx, store.ChangeDevices))
	s, dv, h := sink.counts()
	assert.Equal(t, []int{0, 1, 0}, []int{s, dv, h})

	// empty history is skipped
	require.NoError(t, d.Flush(ctx, store.ChangeSensors|store.ChangeHistory))
	s, dv, h = sink.counts()
	assert.Equal(t, []int{1, 1, 0}, []int{s, dv, h})

	st.ApplyTick(st.Sensors(), models.HistoryPoint{Time: "01:02:03", Light: 7})
	require.NoError(t, d.Flush(ctx, store.ChangeHistory))
	require.Len(t, sink.history, 1)
	assert.Equal(t, "01:02:03", sink.history[0].Time)
}

func TestFlush_BreakerOpensAndIsolatesSinks(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	bad := &recordingSink{name: "bad", err: errors.New("broker down")}
	good := &recordingSink{name: "good"}
	d := NewDispatcher(st, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, zap.NewNop(), bad, good)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := d.Flush(ctx, store.ChangeDevices)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSinkUnavailable)
	}

	err := d.Flush(ctx, store.ChangeDevices)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkUnavailable)
	assert.Equal(t, 2, bad.calls, "open breaker skips the sink")

	_, devices, _ := good.counts()
	assert.Equal(t, 3, devices)
}

func TestDispatcher_MirrorsStoreChanges(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	sink := &recordingSink{name: "rec"}
	d := NewDispatcher(st, DefaultBreakerSettings(), nil, sink)
	assert.Equal(t, 1, d.Sinks())

	d.Start(context.Background())
	defer d.Stop()

	// initial full mirror
	require.Eventually(t, func() bool {
		s, dv, _ := sink.counts()
		return s == 1 && dv == 1
	}, time.Second, 5*time.Millisecond)

	st.ApplyTick(st.Sensors(), models.HistoryPoint{Time: "00:00:01"})
	require.Eventually(t, func() bool {
		_, _, h := sink.counts()
		return h == 1
	}, time.Second, 5*time.Millisecond)

	st.ToggleDevice("d2")
	require.Eventually(t, func() bool {
		_, dv, _ := sink.counts()
		return dv >= 2
	}, time.Second, 5*time.Millisecond)

	d.Stop()
	d.Stop()
}

func TestDispatcher_NoSinksIsNoop(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	d := NewDispatcher(st, BreakerSettings{}, zap.NewNop())
	d.Start(context.Background())
	d.Stop()
	assert.NoError(t, d.Flush(context.Background(), MirroredKinds))
}
