// Package service implements the desk operations that create and update
// CSSD records: intake, kits, approvals, stock and consumption.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/report"
)

// Service runs desk operations against a collection store.
type Service struct {
	store collection.Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a service working against store.
func New(store collection.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying collection store.
func (s *Service) Store() collection.Store {
	return s.store
}

// List fetches a collection, applies q and returns it in display order.
func List[T any](ctx context.Context, store collection.Store, name string, q report.Query, fields report.Fields[T], key func(T) (string, string)) ([]T, error) {
	records, err := collection.List[T](ctx, store, name)
	if err != nil {
		return nil, err
	}
	return report.SortForDisplay(report.Filter(records, q, fields), key), nil
}

// Dashboard reads requests, processes and stock concurrently and derives
// the dashboard from them.
func (s *Service) Dashboard(ctx context.Context) (report.DashboardView, error) {
	var (
		requests  []model.Request
		processes []model.SterilizationProcess
		stock     []model.StockItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = collection.List[model.Request](gctx, s.store, model.CollectionRequests)
		return err
	})
	g.Go(func() (err error) {
		processes, err = collection.List[model.SterilizationProcess](gctx, s.store, model.CollectionProcesses)
		return err
	})
	g.Go(func() (err error) {
		stock, err = collection.List[model.StockItem](gctx, s.store, model.CollectionStock)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.DashboardView{}, fmt.Errorf("loading dashboard: %w", err)
	}

	return report.Dashboard(requests, processes, stock), nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", model.ErrInvalid, field)
	}
	return nil
}

// normalizeDate returns the record date for s in YYYY-MM-DD form.
func normalizeDate(field, s string) (string, error) {
	if err := required(field, s); err != nil {
		return "", err
	}
	day, ok := report.ParseDay(s)
	if !ok {
		return "", fmt.Errorf("%w: %s %q is not a date", model.ErrInvalid, field, s)
	}
	return day.Format(model.DateLayout), nil
}
