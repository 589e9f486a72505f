// Package reconcile drives sterilization cycles and keeps the pool of
// available items consistent with completed cycles and issued items.
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

var (
	// ErrTransition is returned when a process is not in a state that allows
	// the requested transition.
	ErrTransition = model.ErrTransition
	// ErrConflict is returned when a work item is already being sterilized.
	ErrConflict = errors.New("item is already in sterilization")
	// ErrBusy is returned when the same item is already being issued.
	ErrBusy = errors.New("item is already being issued")
)

// Completion triggers.
const (
	TriggerManual = "manual"
	TriggerSweep  = "sweep"
)

// Recorder receives engine events for metrics.
type Recorder interface {
	ProcessCompleted(trigger string)
	ItemIssued(status string)
	PoolReconciled(added, removed, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ProcessCompleted(string) {}
func (nopRecorder) ItemIssued(string) {}
func (nopRecorder) PoolReconciled(int, int, int) {}

// Engine applies sterilization transitions and pool reconciliation against
// a collection store. The store is shared with other writers, so every
// operation re-reads the records it depends on.
type Engine struct {
	store    collection.Store
	methods  []model.Method
	now      func() time.Time
	recorder Recorder

	// mu serializes writes made by this engine.
	mu       sync.Mutex
	sweeping sync.Mutex

	issuingMu sync.Mutex
	issuing   map[string]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithMethods sets the sterilization methods used to look up cycle durations.
func WithMethods(methods []model.Method) Option {
	return func(e *Engine) { e.methods = methods }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// New returns an engine working against store.
func New(store collection.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		methods:  model.DefaultMethods(),
		now:      time.Now,
		recorder: nopRecorder{},
		issuing:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Methods returns the configured sterilization methods.
func (e *Engine) Methods() []model.Method {
	return e.methods
}

// origin is what the pool needs to know about the record a process sterilized.
type origin struct {
	Department string
	Items      model.Items
	Quantity   model.Count
}

// lookupOrigin finds the record an item id refers to: a request, a received
// item or a surgery. ok is false when none can be fetched.
func (e *Engine) lookupOrigin(ctx context.Context, itemID string) (origin, bool) {
	if r, err := collection.Get[model.Request](ctx, e.store, model.CollectionRequests, itemID); err == nil {
		return origin{Department: r.Department, Items: r.Items, Quantity: r.Quantity}, true
	} else if !errors.Is(err, collection.ErrNotFound) {
		slog.Warn("looking up request", "id", itemID, "error", err)
	}
	if r, err := collection.Get[model.ReceiveItem](ctx, e.store, model.CollectionReceiveItems, itemID); err == nil {
		return origin{Department: r.Department, Items: r.Items, Quantity: r.Quantity}, true
	} else if !errors.Is(err, collection.ErrNotFound) {
		slog.Warn("looking up received item", "id", itemID, "error", err)
	}
	if c, err := collection.Get[model.ConsumptionRecord](ctx, e.store, model.CollectionConsumption, itemID); err == nil {
		return origin{Department: c.Dept, Items: c.Items}, true
	} else if !errors.Is(err, collection.ErrNotFound) {
		slog.Warn("looking up surgery record", "id", itemID, "error", err)
	}
	return origin{}, false
}

// newAvailable builds the pool entry for a completed process. Fields missing
// from the origin fall back to the process itself.
func newAvailable(p model.SterilizationProcess, o origin, readyTime string) model.AvailableItem {
	item := model.AvailableItem{
		ID:              p.ItemID,
		Department:      o.Department,
		Items:           o.Items,
		Quantity:        o.Quantity,
		Status:          model.AvailableStatusSterilized,
		ReadyTime:       readyTime,
		SterilizationID: p.ID,
		Machine:         p.Machine,
		Process:         p.Process,
	}
	if item.Department == "" {
		item.Department = p.Machine
	}
	if item.Items == "" {
		item.Items = model.Items(p.Process)
	}
	if item.Items == "" {
		item.Items = model.DefaultItemsLabel
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return item
}

// markRequest sets the status of the request behind itemID, if there is one.
func (e *Engine) markRequest(ctx context.Context, itemID, status string) error {
	_, err := e.store.Patch(ctx, model.CollectionRequests, itemID, map[string]any{"status": status})
	if err != nil && !errors.Is(err, collection.ErrNotFound) {
		return fmt.Errorf("marking request %s %s: %w", itemID, status, err)
	}
	return nil
}
