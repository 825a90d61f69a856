package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"smarthome-sim/internal/automation"
	"smarthome-sim/internal/metrics"
	"smarthome-sim/internal/mirror"
	"smarthome-sim/internal/models"
	"smarthome-sim/internal/scheduler"
	"smarthome-sim/internal/simulation"
	"smarthome-sim/internal/store"
	"smarthome-sim/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStopped is returned by Start once the engine has been stopped
var ErrStopped = errors.New("engine stopped")

// Options configures an Engine
type Options struct {
	// TickInterval is the simulation period; at least one second
	TickInterval time.Duration
	// HistoryCapacity bounds the history buffer
	HistoryCapacity int
	// Seed makes the simulation deterministic; 0 seeds from the clock
	Seed int64
	// Clock labels history points and activity entries
	Clock func() time.Time
	// Initial overrides the seed data when set
	Initial *store.Options
	// Metrics receives engine counters; optional
	Metrics *metrics.Metrics
	// Breaker tunes the per-sink circuit breakers
	Breaker mirror.BreakerSettings
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Engine is the single owner of the simulated home: store, ticker,
// evaluator and outbound mirrors
type Engine struct {
	store     *store.Store
	sched     *scheduler.Scheduler
	sim       *simulation.Simulator
	evaluator *automation.Evaluator
	mirror    *mirror.Dispatcher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	interval  time.Duration

	mu      sync.Mutex
	state   state
	stopped chan struct{}
}

// New wires an engine. Nothing runs until Start.
func New(opts Options, logger *zap.Logger, sinks ...mirror.Sink) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = utils.DefaultTickInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	storeOpts := store.SeedOptions()
	if opts.Initial != nil {
		storeOpts = *opts.Initial
	}
	if opts.HistoryCapacity > 0 {
		storeOpts.HistoryCapacity = opts.HistoryCapacity
	}
	storeOpts.Clock = opts.Clock

	e := &Engine{
		store:    store.New(storeOpts, logger),
		sched:    scheduler.NewScheduler(logger),
		metrics:  opts.Metrics,
		logger:   logger.Named("engine"),
		interval: opts.TickInterval,
		stopped:  make(chan struct{}),
	}
	e.sim = simulation.NewSimulator(e.store, simulation.Options{
		Rand:   rand.New(rand.NewSource(seed)),
		Clock:  opts.Clock,
		OnTick: e.onTick,
	}, logger)
	e.evaluator = automation.NewEvaluator(e.store, automation.Options{OnFire: e.onFire}, logger)
	e.mirror = mirror.NewDispatcher(e.store, opts.Breaker, logger, sinks...)
	e.mirror.SetErrorHandler(e.onMirrorError)
	return e
}

// Start launches the evaluator, the mirrors and the periodic tick. The
// engine stops by itself when ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case stateRunning:
		return nil
	case stateStopped:
		return ErrStopped
	}

	e.evaluator.Start(ctx)
	e.mirror.Start(ctx)
	if err := e.sim.Register(e.sched, e.interval); err != nil {
		e.mirror.Stop()
		e.evaluator.Stop()
		return err
	}
	e.sched.Start()
	e.state = stateRunning

	go func() {
		select {
		case <-ctx.Done():
			e.Stop()
		case <-e.stopped:
		}
	}()

	e.logger.Info("engine started",
		zap.Duration("tick_interval", e.interval),
		zap.Int("sinks", e.mirror.Sinks()))
	return nil
}

// Stop releases the tick timer and ends the background tasks. Reads keep
// returning the last state afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state == stateStopped {
		e.mu.Unlock()
		return
	}
	wasRunning := e.state == stateRunning
	e.state = stateStopped
	close(e.stopped)
	e.mu.Unlock()

	if !wasRunning {
		return
	}
	e.sim.Unregister(e.sched)
	e.sched.Stop()
	e.evaluator.Stop()
	e.mirror.Stop()
	e.logger.Info("engine stopped", zap.Uint64("ticks", e.sim.Ticks()))
}

// Running reports whether the engine is started and not yet stopped
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateRunning
}

// Step runs one tick followed by one evaluation pass on the caller's
// goroutine. It is meant for headless runs where the engine is not started.
func (e *Engine) Step() simulation.TickResult {
	res := e.sim.Tick()
	e.evaluator.EvaluateOnce()
	return res
}

func (e *Engine) Snapshot() store.Snapshot { return e.store.Snapshot() }
func (e *Engine) Devices() []models.Device { return e.store.Devices() }
func (e *Engine) Sensors() []models.Sensor { return e.store.Sensors() }
func (e *Engine) History() []models.HistoryPoint { return e.store.History() }
func (e *Engine) Rules() []models.AutomationRule { return e.store.Rules() }
func (e *Engine) Theme() models.Theme { return e.store.Theme() }
func (e *Engine) Activity() []models.Activity { return e.store.Activity() }
func (e *Engine) Device(id string) (models.Device, bool) { return e.store.Device(id) }

// Subscribe returns a change subscription on the engine store
func (e *Engine) Subscribe() *store.Subscription {
	return e.store.Subscribe()
}

// ToggleDevice flips a device's power. Unknown ids are ignored.
func (e *Engine) ToggleDevice(id string) bool {
	e.countIntent("toggle_device")
	return e.store.ToggleDevice(id)
}

// SetDeviceValue replaces a device's control value. Unknown ids are ignored.
func (e *Engine) SetDeviceValue(id string, value float64) bool {
	e.countIntent("set_device_value")
	return e.store.SetDeviceValue(id, value)
}

// AddRule stores rule, assigning a fresh id when it has none
func (e *Engine) AddRule(rule models.AutomationRule) (models.AutomationRule, error) {
	e.countIntent("add_rule")
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := e.store.AddRule(rule); err != nil {
		return models.AutomationRule{}, err
	}
	e.logger.Info("rule added", zap.String("rule_id", rule.ID), zap.String("rule", rule.Name))
	return rule, nil
}

// DeleteRule removes a rule. Unknown ids are ignored.
func (e *Engine) DeleteRule(id string) bool {
	e.countIntent("delete_rule")
	return e.store.DeleteRule(id)
}

// ToggleRuleActive flips a rule's active flag. Unknown ids are ignored.
func (e *Engine) ToggleRuleActive(id string) bool {
	e.countIntent("toggle_rule")
	return e.store.ToggleRuleActive(id)
}

// ToggleTheme switches the display theme and returns the new one
func (e *Engine) ToggleTheme() models.Theme {
	e.countIntent("toggle_theme")
	return e.store.ToggleTheme()
}

func (e *Engine) countIntent(intent string) {
	if e.metrics != nil {
		e.metrics.Intents.WithLabelValues(intent).Inc()
	}
}

func (e *Engine) onTick(simulation.TickResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.Ticks.Inc()
	e.metrics.HistoryPoints.Set(float64(len(e.store.History())))
}

func (e *Engine) onFire(cmd automation.Command) {
	if e.metrics != nil {
		e.metrics.RuleFirings.WithLabelValues(cmd.RuleName).Inc()
	}
}

func (e *Engine) onMirrorError(sink string, _ error) {
	if e.metrics != nil {
		e.metrics.MirrorErrors.WithLabelValues(sink).Inc()
	}
}
