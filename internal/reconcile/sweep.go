package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// DefaultSweepInterval is how often the Sweeper checks for finished cycles.
const DefaultSweepInterval = 30 * time.Second

// SweepResult reports what one sweep did.
type SweepResult struct {
	Completed []string `json:"completed"`
	Failed    int      `json:"failed"`
	Skipped   bool     `json:"skipped,omitempty"`
}

// Sweep completes every in-progress process whose duration has elapsed.
// A sweep that starts while another is running does nothing.
func (e *Engine) Sweep(ctx context.Context) (SweepResult, error) {
	if !e.sweeping.TryLock() {
		return SweepResult{Skipped: true}, nil
	}
	defer e.sweeping.Unlock()

	result := SweepResult{Completed: []string{}}

	processes, err := collection.List[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses)
	if err != nil {
		return result, fmt.Errorf("listing processes: %w", err)
	}

	var errs []error
	for _, p := range processes {
		if !Due(p, e.now()) {
			continue
		}
		completed, err := e.completeIfRunning(ctx, p.ID)
		if err != nil {
			result.Failed++
			errs = append(errs, err)
		}
		if completed {
			result.Completed = append(result.Completed, p.ID)
		}
	}
	return result, errors.Join(errs...)
}

// completeIfRunning re-reads the process under the engine lock so a process
// completed by someone else since the listing is left alone.
func (e *Engine) completeIfRunning(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := collection.Get[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses, id)
	if err != nil {
		return false, err
	}
	if !Due(p, e.now()) {
		return false, nil
	}
	done, err := e.complete(ctx, p, TriggerSweep)
	return done.Status == model.ProcessStatusCompleted, err
}

// Sweeper runs Sweep periodically until stopped.
type Sweeper struct {
	mu       sync.Mutex
	engine   *Engine
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper. A non-positive interval uses DefaultSweepInterval.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Start begins the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop stops the loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	result, err := s.engine.Sweep(ctx)
	if err != nil {
		slog.Error("sterilization sweep", "error", err, "failed", result.Failed)
	}
	if len(result.Completed) > 0 {
		slog.Info("sterilization sweep completed processes", "ids", result.Completed)
	}
}
