package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// StartInput selects what to sterilize and how.
type StartInput struct {
	Machine string `json:"machine"`
	Method  string `json:"process"`
	ItemID  string `json:"itemId"`
}

// Start begins a sterilization cycle for a work item. All preconditions are
// checked before anything is written.
func (e *Engine) Start(ctx context.Context, in StartInput) (model.SterilizationProcess, error) {
	in.Machine = strings.TrimSpace(in.Machine)
	in.Method = strings.TrimSpace(in.Method)
	in.ItemID = strings.TrimSpace(in.ItemID)

	switch {
	case in.Machine == "":
		return model.SterilizationProcess{}, fmt.Errorf("%w: machine is required", model.ErrInvalid)
	case in.Method == "":
		return model.SterilizationProcess{}, fmt.Errorf("%w: sterilization method is required", model.ErrInvalid)
	case in.ItemID == "":
		return model.SterilizationProcess{}, fmt.Errorf("%w: item id is required", model.ErrInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	processes, err := collection.List[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses)
	if err != nil {
		return model.SterilizationProcess{}, fmt.Errorf("checking running processes: %w", err)
	}
	for _, p := range processes {
		if p.ItemID == in.ItemID && p.InSterilization() {
			return model.SterilizationProcess{}, fmt.Errorf("%s (process %s): %w", in.ItemID, p.ID, ErrConflict)
		}
	}

	now := e.now()
	created, err := collection.Create(ctx, e.store, model.CollectionProcesses, model.SterilizationProcess{
		Machine:   in.Machine,
		Process:   in.Method,
		ItemID:    in.ItemID,
		StartTime: model.Clock(now),
		Status:    model.ProcessStatusInProgress,
		Duration:  model.Count(model.MethodDuration(e.methods, in.Method)),
		StartedAt: model.Timestamp(now),
	})
	if err != nil {
		return model.SterilizationProcess{}, fmt.Errorf("creating process: %w", err)
	}

	return created, e.markRequest(ctx, in.ItemID, model.RequestStatusInProgress)
}

// Pause suspends a running process.
func (e *Engine) Pause(ctx context.Context, id string) (model.SterilizationProcess, error) {
	return e.transition(ctx, id, model.ProcessStatusInProgress, model.ProcessStatusPaused, "pausedAt")
}

// Resume continues a paused process. Elapsed time still counts from the
// original start.
func (e *Engine) Resume(ctx context.Context, id string) (model.SterilizationProcess, error) {
	return e.transition(ctx, id, model.ProcessStatusPaused, model.ProcessStatusInProgress, "")
}

func (e *Engine) transition(ctx context.Context, id, from, to, stampField string) (model.SterilizationProcess, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := collection.Get[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses, id)
	if err != nil {
		return model.SterilizationProcess{}, err
	}
	if p.Status != from {
		return p, fmt.Errorf("%s is %s, cannot move to %s: %w", id, p.Status, to, ErrTransition)
	}

	stamp := model.Timestamp(e.now())
	fields := map[string]any{"status": to, "updatedAt": stamp}
	if stampField != "" {
		fields[stampField] = stamp
	}
	return collection.Patch[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses, id, fields)
}

// Complete finishes a running or paused process and makes its item
// available for issue.
func (e *Engine) Complete(ctx context.Context, id string) (model.SterilizationProcess, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := collection.Get[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses, id)
	if err != nil {
		return model.SterilizationProcess{}, err
	}
	if !p.InSterilization() {
		return p, fmt.Errorf("%s is %s, cannot complete: %w", id, p.Status, ErrTransition)
	}
	return e.complete(ctx, p, TriggerManual)
}

// complete marks p completed, then upserts its pool entry and marks the
// originating request. Failures after the status change are returned
// without undoing earlier steps; a later refresh heals the pool.
// Callers hold e.mu.
func (e *Engine) complete(ctx context.Context, p model.SterilizationProcess, trigger string) (model.SterilizationProcess, error) {
	now := e.now()
	fields := map[string]any{
		"status":    model.ProcessStatusCompleted,
		"updatedAt": model.Timestamp(now),
	}
	if p.EndTime == "" {
		fields["endTime"] = model.Clock(now)
		fields["completedAt"] = model.Timestamp(now)
	}

	done, err := collection.Patch[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses, p.ID, fields)
	if err != nil {
		return p, fmt.Errorf("completing process %s: %w", p.ID, err)
	}
	e.recorder.ProcessCompleted(trigger)

	readyTime := done.EndTime
	if readyTime == "" {
		readyTime = model.Clock(now)
	}

	var errs []error
	if done.ItemID != "" {
		if err := e.upsertAvailable(ctx, done, readyTime); err != nil {
			errs = append(errs, err)
		}
		if err := e.markRequest(ctx, done.ItemID, model.RequestStatusCompleted); err != nil {
			errs = append(errs, err)
		}
	}
	return done, errors.Join(errs...)
}

// upsertAvailable inserts the pool entry for p, or refreshes the
// sterilization fields of the entry already holding its item id.
func (e *Engine) upsertAvailable(ctx context.Context, p model.SterilizationProcess, readyTime string) error {
	_, err := e.store.Get(ctx, model.CollectionAvailable, p.ItemID)
	switch {
	case err == nil:
		_, err = e.store.Patch(ctx, model.CollectionAvailable, p.ItemID, map[string]any{
			"readyTime":       readyTime,
			"sterilizationId": p.ID,
			"machine":         p.Machine,
			"process":         p.Process,
		})
		if err != nil {
			return fmt.Errorf("updating available item %s: %w", p.ItemID, err)
		}
		return nil
	case errors.Is(err, collection.ErrNotFound):
		o, _ := e.lookupOrigin(ctx, p.ItemID)
		if _, err := e.store.Create(ctx, model.CollectionAvailable, newAvailable(p, o, readyTime)); err != nil {
			return fmt.Errorf("adding available item %s: %w", p.ItemID, err)
		}
		return nil
	default:
		return fmt.Errorf("checking available item %s: %w", p.ItemID, err)
	}
}

// Due reports whether an in-progress process has run for its full duration
// at now. Elapsed time counts from startedAt, or from startTime on the
// current day for records that only carry a wall-clock time.
func Due(p model.SterilizationProcess, now time.Time) bool {
	if p.Status != model.ProcessStatusInProgress || p.Duration <= 0 {
		return false
	}
	start, ok := startOf(p, now)
	if !ok {
		return false
	}
	return now.Sub(start) >= time.Duration(p.Duration)*time.Minute
}

func startOf(p model.SterilizationProcess, now time.Time) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, p.StartedAt); err == nil {
		return t, true
	}
	clock, err := time.Parse(model.ClockLayout, strings.TrimSpace(p.StartTime))
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}
