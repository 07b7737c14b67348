package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// LifecycleRunner runs until its context is canceled, then drains and
// stops exactly once. Drainers run in registration order so a session
// can flush its audio before the metrics server goes away. Stop may be
// called concurrently with Run.
type LifecycleRunner struct {
	state    int32
	ctx      context.Context
	cancel   context.CancelFunc
	onceStop sync.Once
	hooks    Hooks
	drainers []Drainer
	logger   *slog.Logger
	stopErr  error
	timeout  time.Duration
}

func NewLifecycleRunner(logger *slog.Logger, hooks Hooks, timeout time.Duration, drainers ...Drainer) *LifecycleRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LifecycleRunner{
		state:    int32(StateNew),
		ctx:      ctx,
		cancel:   cancel,
		hooks:    hooks,
		drainers: drainers,
		logger:   logger,
		timeout:  timeout,
	}
}

func (r *LifecycleRunner) Run(ctx context.Context) error {
	if !r.casState(StateNew, StateStarting) {
		return errors.New("invalid state transition")
	}
	PrintBanner()
	if ctx != nil {
		r.ctx, r.cancel = context.WithCancel(ctx)
	}
	if r.hooks.OnStart != nil {
		r.hooks.OnStart()
	}
	r.setState(StateRunning)
	r.logger.Info("runner_started")
	<-r.ctx.Done()
	return r.stop()
}

func (r *LifecycleRunner) Stop() error {
	r.cancel()
	return r.stop()
}

func (r *LifecycleRunner) State() State {
	return State(atomic.LoadInt32(&r.state))
}

func (r *LifecycleRunner) stop() error {
	r.onceStop.Do(func() {
		r.setState(StateDraining)
		r.logger.Info("runner_draining", slog.Int("drainers", len(r.drainers)))
		deadline := time.After(r.timeout)
		for _, d := range r.drainers {
			done := make(chan error, 1)
			go func(d Drainer) { done <- d.Drain() }(d)
			select {
			case err := <-done:
				if err != nil {
					r.logger.Warn("drain_failed", slog.String("error", err.Error()))
				}
			case <-deadline:
				r.stopErr = errors.New("drain timeout")
				r.logger.Error("drain_timeout")
			}
			if r.stopErr != nil {
				break
			}
		}
		if r.hooks.OnStop != nil {
			r.hooks.OnStop()
		}
		r.setState(StateStopped)
		r.logger.Info("runner_stopped")
	})
	return r.stopErr
}

func (r *LifecycleRunner) casState(from, to State) bool {
	return atomic.CompareAndSwapInt32(&r.state, int32(from), int32(to))
}

func (r *LifecycleRunner) setState(s State) {
	atomic.StoreInt32(&r.state, int32(s))
}
