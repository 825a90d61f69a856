package simulation

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"smarthome-sim/internal/models"
	"smarthome-sim/internal/scheduler"
	"smarthome-sim/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 4, 21, 30, 15, 0, time.UTC)
}

func newSim(t *testing.T, opts store.Options, seed int64) (*Simulator, *store.Store) {
	t.Helper()
	st := store.New(opts, zap.NewNop())
	sim := NewSimulator(st, Options{Rand: rand.New(rand.NewSource(seed)), Clock: fixedClock}, zap.NewNop())
	return sim, st
}

func TestTick_ClampsSensors(t *testing.T) {
	opts := store.SeedOptions()
	opts.Sensors = []models.Sensor{
		{ID: "t", Type: models.SensorTemperature, Value: -40},
		{ID: "h-high", Type: models.SensorHumidity, Value: 99.9},
		{ID: "h-low", Type: models.SensorHumidity, Value: 0.1},
		{ID: "l", Type: models.SensorLight, Value: 0.5},
	}
	sim, st := newSim(t, opts, 7)

	for i := 0; i < 500; i++ {
		sim.Tick()
		for _, s := range st.Sensors() {
			switch s.Type {
			case models.SensorHumidity:
				require.GreaterOrEqual(t, s.Value, 0.0)
				require.LessOrEqual(t, s.Value, 100.0)
			case models.SensorLight:
				require.GreaterOrEqual(t, s.Value, 0.0)
			}
		}
		for _, p := range st.History() {
			require.GreaterOrEqual(t, p.Light, 0.0)
		}
	}
}

func TestTick_PerturbationBoundsAndTrend(t *testing.T) {
	sim, st := newSim(t, store.SeedOptions(), 42)

	for i := 0; i < 200; i++ {
		before := st.Sensors()
		sim.Tick()
		after := st.Sensors()
		require.Len(t, after, len(before))

		for j := range after {
			prev, next := before[j], after[j]
			require.Equal(t, prev.ID, next.ID)

			limit := sensorScaleDefault/2 + 0.06
			if next.Type == models.SensorLight {
				limit = sensorScaleLight/2 + 0.06
			}
			delta := next.Value - prev.Value
			assert.LessOrEqual(t, math.Abs(delta), limit)

			// one decimal place
			assert.InDelta(t, next.Value, math.Round(next.Value*10)/10, 1e-9)

			switch {
			case delta > 0.05:
				assert.Equal(t, models.TrendUp, next.Trend)
			case delta < -0.05:
				assert.Equal(t, models.TrendDown, next.Trend)
			}
		}
	}
}

func TestTick_HistoryLength(t *testing.T) {
	sim, st := newSim(t, store.SeedOptions(), 1)

	for i := 1; i <= 45; i++ {
		res := sim.Tick()
		assert.Equal(t, uint64(i), res.Tick)
		want := i
		if want > 20 {
			want = 20
		}
		require.Len(t, st.History(), want)
		last := st.History()[len(st.History())-1]
		assert.Equal(t, res.Point, last)
	}
	assert.Equal(t, uint64(45), sim.Ticks())
}

func TestTick_HistoryWalkStartsFromDefault(t *testing.T) {
	sim, st := newSim(t, store.SeedOptions(), 3)

	res := sim.Tick()
	assert.Equal(t, "21:30:15", res.Point.Time)
	assert.InDelta(t, 24, res.Point.Temperature, historyScaleTemperature/2+0.05)
	assert.InDelta(t, 45, res.Point.Humidity, historyScaleHumidity/2+0.05)
	assert.InDelta(t, 850, res.Point.Light, historyScaleLight/2+0.5)
	assert.Equal(t, math.Round(res.Point.Light), res.Point.Light, "light is an integer")

	next := sim.Tick()
	assert.InDelta(t, res.Point.Light, next.Point.Light, historyScaleLight/2+0.5)
	require.Len(t, st.History(), 2)
}

func TestTick_Deterministic(t *testing.T) {
	a, _ := newSim(t, store.SeedOptions(), 99)
	b, _ := newSim(t, store.SeedOptions(), 99)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Tick(), b.Tick())
	}
}

func TestTick_OnTickHook(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	var got []TickResult
	sim := NewSimulator(st, Options{
		Rand:   rand.New(rand.NewSource(5)),
		OnTick: func(r TickResult) { got = append(got, r) },
	}, nil)

	sim.Tick()
	sim.Tick()
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[1].Tick)
}

func TestRegister_UsesScheduler(t *testing.T) {
	st := store.NewSeeded(zap.NewNop())
	sim := NewSimulator(st, Options{}, zap.NewNop())
	sched := scheduler.NewScheduler(zap.NewNop())

	require.NoError(t, sim.Register(sched, 2*time.Second))
	assert.Equal(t, 1, sched.GetScheduledJobCount())
	sim.Unregister(sched)
	assert.Equal(t, 0, sched.GetScheduledJobCount())

	assert.Error(t, sim.Register(sched, 10*time.Millisecond))
}
