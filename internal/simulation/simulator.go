package simulation

import (
	"math/rand"
	"sync"
	"time"

	"smarthome-sim/internal/models"
	"smarthome-sim/internal/scheduler"
	"smarthome-sim/internal/store"
	"smarthome-sim/internal/utils"

	"go.uber.org/zap"
)

// JobName is the scheduler job name of the tick
const JobName = "simulation-tick"

// Random-walk spreads. A perturbation is uniform over [-scale/2, +scale/2].
const (
	sensorScaleLight   = 20.0
	sensorScaleDefault = 0.5

	historyScaleTemperature = 0.5
	historyScaleHumidity    = 1.0
	historyScaleLight       = 10.0
)

// TickResult describes what a single tick wrote to the store
type TickResult struct {
	Tick    uint64
	Sensors []models.Sensor
	Point   models.HistoryPoint
}

// Options configures a Simulator
type Options struct {
	// Rand is the random source; a time-seeded source is used when nil
	Rand *rand.Rand
	// Clock labels history points; time.Now when nil
	Clock func() time.Time
	// OnTick is called after every tick with its result
	OnTick func(TickResult)
}

// Simulator advances the synthetic environment. Each tick perturbs every
// sensor and, from a separate set of random draws, extends the history walk
// from its last point. The two are intentionally not derived from each other,
// so the live sensor value and the latest chart point can diverge.
type Simulator struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
	onTick func(TickResult)

	mu    sync.Mutex // guards rng and ticks
	rng   *rand.Rand
	ticks uint64
}

// NewSimulator creates a simulator writing to st
func NewSimulator(st *store.Store, opts Options, logger *zap.Logger) *Simulator {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		store:  st,
		logger: logger.Named("simulation"),
		now:    opts.Clock,
		onTick: opts.OnTick,
		rng:    opts.Rand,
	}
}

// Register schedules the tick on sched at the given interval
func (s *Simulator) Register(sched *scheduler.Scheduler, interval time.Duration) error {
	return sched.Every(JobName, interval, func() { s.Tick() })
}

// Unregister removes the tick from sched, releasing its timer
func (s *Simulator) Unregister(sched *scheduler.Scheduler) {
	sched.Remove(JobName)
}

// Ticks returns the number of ticks executed so far
func (s *Simulator) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Tick runs one simulation step and applies it to the store atomically
func (s *Simulator) Tick() TickResult {
	current := s.store.Snapshot()

	s.mu.Lock()
	sensors := make([]models.Sensor, len(current.Sensors))
	for i, sensor := range current.Sensors {
		sensors[i] = s.stepSensor(sensor)
	}
	point := s.nextHistoryPoint(current.History)
	s.ticks++
	result := TickResult{Tick: s.ticks, Sensors: sensors, Point: point}
	s.mu.Unlock()

	s.store.ApplyTick(sensors, point)

	s.logger.Debug("tick applied",
		zap.Uint64("tick", result.Tick),
		zap.String("time", point.Time),
		zap.Int("sensors", len(sensors)))

	if s.onTick != nil {
		s.onTick(result)
	}
	return result
}

func (s *Simulator) stepSensor(sensor models.Sensor) models.Sensor {
	scale := sensorScaleDefault
	if sensor.Type == models.SensorLight {
		scale = sensorScaleLight
	}
	change := utils.Jitter(s.rng.Float64(), scale)
	value := utils.Round(sensor.Value+change, 1)

	switch sensor.Type {
	case models.SensorHumidity:
		value = utils.Clamp(value, 0, 100)
	case models.SensorLight:
		if value < 0 {
			value = 0
		}
	}

	sensor.Value = value
	sensor.Trend = models.TrendOf(change)
	return sensor
}

func (s *Simulator) nextHistoryPoint(history []models.HistoryPoint) models.HistoryPoint {
	last := models.DefaultHistoryPoint()
	if len(history) > 0 {
		last = history[len(history)-1]
	}

	light := utils.Round(last.Light+utils.Jitter(s.rng.Float64(), historyScaleLight), 0)
	if light < 0 {
		light = 0
	}
	return models.HistoryPoint{
		Time:        utils.ClockString(s.now()),
		Temperature: utils.Round(last.Temperature+utils.Jitter(s.rng.Float64(), historyScaleTemperature), 1),
		Humidity:    utils.Round(last.Humidity+utils.Jitter(s.rng.Float64(), historyScaleHumidity), 1),
		Light:       light,
	}
}
