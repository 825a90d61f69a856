package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smarthome-sim/internal/store"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes the per-sink circuit breaker
type BreakerSettings struct {
	// MaxFailures consecutive failures open the breaker
	MaxFailures uint32
	// OpenTimeout is how long an open breaker rejects calls
	OpenTimeout time.Duration
	// Interval clears the failure counts while closed; 0 never clears
	Interval time.Duration
}

// DefaultBreakerSettings returns the settings used when none are given
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 3, OpenTimeout: 30 * time.Second}
}

const publishTimeout = 2 * time.Second

// MirroredKinds are the store changes forwarded to sinks
const MirroredKinds = store.ChangeSensors | store.ChangeDevices | store.ChangeHistory

type guardedSink struct {
	sink    Sink
	breaker *gobreaker.CircuitBreaker
}

// Dispatcher forwards store changes to every sink. Each sink sits behind its
// own circuit breaker so a dead broker never stalls the others.
type Dispatcher struct {
	store  *store.Store
	sinks   []guardedSink
	logger  *zap.Logger
	onError func(sink string, err error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDispatcher creates a dispatcher for the given sinks
func NewDispatcher(st *store.Store, settings BreakerSettings, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mirror")
	if settings.MaxFailures == 0 {
		settings.MaxFailures = DefaultBreakerSettings().MaxFailures
	}

	d := &Dispatcher{store: st, logger: logger}
	for _, s := range sinks {
		name := s.Name()
		maxFailures := settings.MaxFailures
		d.sinks = append(d.sinks, guardedSink{
			sink: s,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:     name,
				Interval: settings.Interval,
				Timeout:  settings.OpenTimeout,
				ReadyToTrip: func(c gobreaker.Counts) bool {
					return c.ConsecutiveFailures >= maxFailures
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					logger.Warn("breaker state changed",
						zap.String("sink", name), zap.String("from", from.String()), zap.String("to", to.String()))
				},
			}),
		})
	}
	return d
}

// SetErrorHandler registers fn to be called for every failed publish. It
// must be called before Start.
func (d *Dispatcher) SetErrorHandler(fn func(sink string, err error)) {
	d.onError = fn
}

// Sinks returns the number of attached sinks
func (d *Dispatcher) Sinks() int {
	return len(d.sinks)
}

// Flush publishes the parts of the current snapshot selected by change to
// every sink. The returned error joins the failures of all sinks.
func (d *Dispatcher) Flush(ctx context.Context, change store.Change) error {
	if !change.Has(MirroredKinds) || len(d.sinks) == 0 {
		return nil
	}
	snap := d.store.Snapshot()

	var errs []error
	for _, g := range d.sinks {
		sink := g.sink
		_, err := g.breaker.Execute(func() (interface{}, error) {
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()

			if change.Has(store.ChangeSensors) {
				if err := sink.PublishSensors(pubCtx, snap.Sensors); err != nil {
					return nil, err
				}
			}
			if change.Has(store.ChangeDevices) {
				if err := sink.PublishDevices(pubCtx, snap.Devices); err != nil {
					return nil, err
				}
			}
			if change.Has(store.ChangeHistory) && len(snap.History) > 0 {
				if err := sink.PublishHistory(pubCtx, snap.History[len(snap.History)-1]); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err == nil {
			continue
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%s: %w", sink.Name(), ErrSinkUnavailable)
		} else {
			err = fmt.Errorf("%s: %w", sink.Name(), err)
		}
		d.logger.Debug("mirror publish failed", zap.Error(err))
		if d.onError != nil {
			d.onError(sink.Name(), err)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Start subscribes to the store and mirrors changes until Stop or ctx
// cancellation. It is a no-op without sinks.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil || len(d.sinks) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := d.store.Subscribe()
	d.cancel = cancel
	d.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		defer sub.Close()
		d.logger.Info("mirror started", zap.Int("sinks", len(d.sinks)))

		if err := d.Flush(ctx, MirroredKinds); err != nil {
			d.logger.Warn("initial mirror failed", zap.Error(err))
		}
		for {
			change, err := sub.Next(ctx)
			if err != nil {
				d.logger.Info("mirror stopped")
				return
			}
			if err := d.Flush(ctx, change); err != nil {
				d.logger.Warn("mirror failed", zap.Error(err))
			}
		}
	}(d.done)
}

// Stop ends mirroring and waits for the in-flight publish to finish
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
