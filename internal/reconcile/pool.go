package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// run identifies one sterilization run of one item.
type run struct {
	itemID          string
	sterilizationID string
}

func issuedRuns(issues []model.IssueItem) map[run]bool {
	runs := make(map[run]bool, len(issues))
	for _, i := range issues {
		if i.SterilizationID != "" {
			runs[run{i.RequestID, i.SterilizationID}] = true
		}
	}
	return runs
}

// Dedupe keeps the first pool entry for every id.
func Dedupe(items []model.AvailableItem) []model.AvailableItem {
	seen := make(map[string]bool, len(items))
	out := make([]model.AvailableItem, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// Missing returns the completed processes whose item has no pool entry.
// Only the latest completed run of each item counts, and it is skipped when
// that run was already issued, so an issued item does not come back on
// refresh.
func Missing(pool []model.AvailableItem, processes []model.SterilizationProcess, issues []model.IssueItem) []model.SterilizationProcess {
	present := make(map[string]bool, len(pool))
	for _, it := range pool {
		present[it.ID] = true
	}
	issued := issuedRuns(issues)

	latest := make(map[string]int)
	var runs []model.SterilizationProcess
	for _, p := range processes {
		if p.Status != model.ProcessStatusCompleted || p.ItemID == "" {
			continue
		}
		if i, ok := latest[p.ItemID]; ok {
			runs[i] = p
			continue
		}
		latest[p.ItemID] = len(runs)
		runs = append(runs, p)
	}

	var out []model.SterilizationProcess
	for _, p := range runs {
		if present[p.ItemID] || issued[run{p.ItemID, p.ID}] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Stale returns pool entries whose sterilization run was already issued.
// They are left behind when an issue is interrupted before the pool entry
// is removed.
func Stale(pool []model.AvailableItem, issues []model.IssueItem) []model.AvailableItem {
	issued := issuedRuns(issues)
	var out []model.AvailableItem
	for _, it := range pool {
		if it.SterilizationID != "" && issued[run{it.ID, it.SterilizationID}] {
			out = append(out, it)
		}
	}
	return out
}

// RefreshResult counts the pool changes made by Refresh.
type RefreshResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// snapshot is everything Refresh reads.
type snapshot struct {
	pool      []model.AvailableItem
	processes []model.SterilizationProcess
	requests  []model.Request
	received  []model.ReceiveItem
	surgeries []model.ConsumptionRecord
	issues    []model.IssueItem
}

func (e *Engine) snapshot(ctx context.Context) (snapshot, error) {
	var s snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.pool, err = collection.List[model.AvailableItem](ctx, e.store, model.CollectionAvailable)
		return err
	})
	g.Go(func() (err error) {
		s.processes, err = collection.List[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses)
		return err
	})
	g.Go(func() (err error) {
		s.requests, err = collection.List[model.Request](ctx, e.store, model.CollectionRequests)
		return err
	})
	g.Go(func() (err error) {
		s.received, err = collection.List[model.ReceiveItem](ctx, e.store, model.CollectionReceiveItems)
		return err
	})
	g.Go(func() (err error) {
		s.surgeries, err = collection.List[model.ConsumptionRecord](ctx, e.store, model.CollectionConsumption)
		return err
	})
	g.Go(func() (err error) {
		s.issues, err = collection.List[model.IssueItem](ctx, e.store, model.CollectionIssues)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// origins indexes the first record of every id that a process may refer to,
// in the same precedence as lookupOrigin.
func (s snapshot) origins() map[string]origin {
	m := make(map[string]origin)
	add := func(id string, o origin) {
		if _, ok := m[id]; !ok && id != "" {
			m[id] = o
		}
	}
	for _, r := range s.requests {
		add(r.ID, origin{Department: r.Department, Items: r.Items, Quantity: r.Quantity})
	}
	for _, r := range s.received {
		add(r.ID, origin{Department: r.Department, Items: r.Items, Quantity: r.Quantity})
	}
	for _, c := range s.surgeries {
		add(c.ID, origin{Department: c.Dept, Items: c.Items})
	}
	return m
}

// Refresh brings the pool in line with completed processes and issued
// items: it drops entries whose run was issued and adds entries for
// completed processes that have none. Individual write failures are counted
// and returned together; earlier writes stay in place.
func (e *Engine) Refresh(ctx context.Context) (RefreshResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result RefreshResult
	s, err := e.snapshot(ctx)
	if err != nil {
		return result, fmt.Errorf("reading collections: %w", err)
	}

	var errs []error
	removed := make(map[string]bool)
	for _, it := range Stale(s.pool, s.issues) {
		if removed[it.ID] {
			continue
		}
		if err := e.store.Delete(ctx, model.CollectionAvailable, it.ID); err != nil && !errors.Is(err, collection.ErrNotFound) {
			result.Failed++
			errs = append(errs, fmt.Errorf("removing issued item %s: %w", it.ID, err))
			continue
		}
		removed[it.ID] = true
		result.Removed++
	}

	live := make([]model.AvailableItem, 0, len(s.pool))
	for _, it := range s.pool {
		if !removed[it.ID] {
			live = append(live, it)
		}
	}

	origins := s.origins()
	now := model.Clock(e.now())
	for _, p := range Missing(live, s.processes, s.issues) {
		readyTime := p.EndTime
		if readyTime == "" {
			readyTime = now
		}
		item := newAvailable(p, origins[p.ItemID], readyTime)
		if _, err := e.store.Create(ctx, model.CollectionAvailable, item); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("adding available item %s: %w", p.ItemID, err))
			continue
		}
		result.Added++
	}

	e.recorder.PoolReconciled(result.Added, result.Removed, result.Failed)
	if result != (RefreshResult{}) {
		slog.Info("available items refreshed", "added", result.Added, "removed", result.Removed, "failed", result.Failed)
	}
	return result, errors.Join(errs...)
}

// RewriteResult counts the writes made by a pool rewrite.
type RewriteResult struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
	Failed   int `json:"failed"`
}

// Rewrite replaces the pool with items, deduplicated by id. Every existing
// id is deleted and every unique item inserted; failures are counted and
// returned together without undoing the writes that succeeded.
func (e *Engine) Rewrite(ctx context.Context, items []model.AvailableItem) (RewriteResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := collection.List[model.AvailableItem](ctx, e.store, model.CollectionAvailable)
	if err != nil {
		return RewriteResult{}, fmt.Errorf("listing available items: %w", err)
	}
	return e.rewrite(ctx, current, Dedupe(items))
}

// DedupePool removes duplicate pool entries, keeping the first of each id.
// A pool without duplicates is left untouched.
func (e *Engine) DedupePool(ctx context.Context) (RewriteResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := collection.List[model.AvailableItem](ctx, e.store, model.CollectionAvailable)
	if err != nil {
		return RewriteResult{}, fmt.Errorf("listing available items: %w", err)
	}
	unique := Dedupe(current)
	if len(unique) == len(current) {
		return RewriteResult{}, nil
	}
	return e.rewrite(ctx, current, unique)
}

func (e *Engine) rewrite(ctx context.Context, current, items []model.AvailableItem) (RewriteResult, error) {
	var result RewriteResult
	var errs []error

	deleted := make(map[string]bool)
	for _, it := range current {
		if deleted[it.ID] {
			continue
		}
		deleted[it.ID] = true
		if err := e.store.Delete(ctx, model.CollectionAvailable, it.ID); err != nil && !errors.Is(err, collection.ErrNotFound) {
			result.Failed++
			errs = append(errs, fmt.Errorf("deleting available item %s: %w", it.ID, err))
			continue
		}
		result.Deleted++
	}

	for _, it := range items {
		if _, err := e.store.Create(ctx, model.CollectionAvailable, it); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("inserting available item %s: %w", it.ID, err))
			continue
		}
		result.Inserted++
	}

	return result, errors.Join(errs...)
}
