package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// memStore is a minimal in-memory collection store.
type memStore struct {
	mu      sync.Mutex
	records map[string][]map[string]any
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]map[string]any)}
}

func (m *memStore) List(_ context.Context, name string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []json.RawMessage{}
	for _, r := range m.records[name] {
		b, _ := json.Marshal(r)
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, name, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records[name] {
		if r["id"] == id {
			return json.Marshal(r)
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
}

func (m *memStore) Create(_ context.Context, name string, record any) (json.RawMessage, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var r map[string]any
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r["id"] == "" || r["id"] == nil {
		r["id"] = fmt.Sprintf("%s%03d", model.IDPrefix(name), len(m.records[name])+1)
	}
	m.records[name] = append(m.records[name], r)
	return json.Marshal(r)
}

func (m *memStore) Patch(_ context.Context, name, id string, fields map[string]any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records[name] {
		if r["id"] == id {
			for k, v := range fields {
				r[k] = v
			}
			return json.Marshal(r)
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
}

func (m *memStore) Delete(_ context.Context, name, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[name][:0]
	for _, r := range m.records[name] {
		if r["id"] != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(m.records[name]) {
		return fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
	}
	m.records[name] = kept
	return nil
}

func TestSweeperCompletesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newMemStore()
	ctx := context.Background()
	s.Create(ctx, model.CollectionProcesses, model.SterilizationProcess{
		ID: "STE001", ItemID: "REQ001", Status: model.ProcessStatusInProgress, Duration: 45,
		StartedAt: model.Timestamp(testNow.Add(-46 * time.Minute)),
	})

	e := New(s, WithClock(func() time.Time { return testNow }))
	sweeper := NewSweeper(e, 5*time.Millisecond)
	sweeper.Start(ctx)
	sweeper.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for {
		p, err := collection.Get[model.SterilizationProcess](ctx, s, model.CollectionProcesses, "STE001")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if p.Status == model.ProcessStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			sweeper.Stop()
			t.Fatal("sweeper did not complete the process")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sweeper.Stop()
	sweeper.Stop()

	pool, _ := collection.List[model.AvailableItem](ctx, s, model.CollectionAvailable)
	if len(pool) != 1 || pool[0].ID != "REQ001" {
		t.Errorf("expected exactly one pool entry for REQ001, got %+v", pool)
	}
}

func TestNewSweeperDefaultInterval(t *testing.T) {
	s := NewSweeper(New(newMemStore()), 0)
	if s.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultSweepInterval)
	}
}
