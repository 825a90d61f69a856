package automation

import (
	"context"
	"sync"
	"sync/atomic"

	"smarthome-sim/internal/store"

	"go.uber.org/zap"
)

// TriggerKinds are the store changes that re-run the evaluator. A device
// mutation alone, including one made by the evaluator, never causes another
// pass.
const TriggerKinds = store.ChangeSensors | store.ChangeRules

// Options configures an Evaluator
type Options struct {
	// OnFire is called for every command that changed a device
	OnFire func(Command)
}

// Evaluator couples sensor state to device state. It reacts to store change
// notifications rather than polling.
type Evaluator struct {
	store  *store.Store
	logger *zap.Logger
	onFire func(Command)

	passes atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEvaluator creates an evaluator bound to st
func NewEvaluator(st *store.Store, opts Options, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		store:  st,
		logger: logger.Named("automation"),
		onFire: opts.OnFire,
	}
}

// EvaluateOnce runs a single pass over the current snapshot and returns the
// number of devices changed
func (e *Evaluator) EvaluateOnce() int {
	snap := e.store.Snapshot()
	cmds := Evaluate(snap.Sensors, snap.Rules, snap.Devices)
	e.passes.Add(1)
	if len(cmds) == 0 {
		return 0
	}
	return ExecuteActions(e.store, cmds, e.logger, e.onFire)
}

// Passes returns the number of evaluation passes run so far
func (e *Evaluator) Passes() uint64 {
	return e.passes.Load()
}

// Start subscribes to the store, runs an initial pass and keeps evaluating
// on every sensor or rule change until Stop or ctx cancellation
func (e *Evaluator) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := e.store.Subscribe()
	e.cancel = cancel
	e.done = make(chan struct{})

	e.EvaluateOnce()

	go func(done chan struct{}) {
		defer close(done)
		defer sub.Close()
		e.logger.Info("evaluator started")
		for {
			change, err := sub.Next(ctx)
			if err != nil {
				e.logger.Info("evaluator stopped")
				return
			}
			if !change.Has(TriggerKinds) {
				continue
			}
			e.EvaluateOnce()
		}
	}(e.done)
}

// Stop ends the evaluation loop and waits for it to exit
func (e *Evaluator) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
