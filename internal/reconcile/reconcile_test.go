package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/db"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/store"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

func newTestEngine(t *testing.T) (*Engine, collection.Store) {
	t.Helper()
	s := store.NewCollections(db.NewTestDB(t))
	return New(s, WithClock(func() time.Time { return testNow })), s
}

func seed(t *testing.T, s collection.Store, name string, record any) {
	t.Helper()
	if _, err := s.Create(context.Background(), name, record); err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
}

func list[T any](t *testing.T, s collection.Store, name string) []T {
	t.Helper()
	out, err := collection.List[T](context.Background(), s, name)
	if err != nil {
		t.Fatalf("listing %s: %v", name, err)
	}
	return out
}

func poolIDs(t *testing.T, s collection.Store) []string {
	t.Helper()
	ids := []string{}
	for _, it := range list[model.AvailableItem](t, s, model.CollectionAvailable) {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestStartPreconditions(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	tests := []StartInput{
		{Method: "Steam Sterilization", ItemID: "REQ001"},
		{Machine: "Autoclave-1", ItemID: "REQ001"},
		{Machine: "Autoclave-1", Method: "Steam Sterilization", ItemID: "  "},
	}
	for _, in := range tests {
		if _, err := e.Start(ctx, in); !errors.Is(err, model.ErrInvalid) {
			t.Errorf("Start(%+v) error = %v, want ErrInvalid", in, err)
		}
	}
	if n := len(list[model.SterilizationProcess](t, s, model.CollectionProcesses)); n != 0 {
		t.Fatalf("expected no processes after rejected starts, got %d", n)
	}

	if _, err := e.Start(ctx, StartInput{Machine: "Autoclave-1", Method: "Steam Sterilization", ItemID: "REQ001"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err := e.Start(ctx, StartInput{Machine: "Autoclave-2", Method: "Steam Sterilization", ItemID: "REQ001"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second Start error = %v, want ErrConflict", err)
	}
}

func TestStart(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ001", Department: "ICU", Status: model.RequestStatusRequested})

	p, err := e.Start(ctx, StartInput{Machine: "Chemical Sterilizer-1", Method: "Chemical Sterilization", ItemID: "REQ001"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := model.SterilizationProcess{
		ID:        "STE001",
		Machine:   "Chemical Sterilizer-1",
		Process:   "Chemical Sterilization",
		ItemID:    "REQ001",
		StartTime: "12:00",
		Status:    model.ProcessStatusInProgress,
		Duration:  75,
		StartedAt: testNow.Format(time.RFC3339),
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("process mismatch (-want +got):\n%s", diff)
	}

	req, _ := collection.Get[model.Request](ctx, s, model.CollectionRequests, "REQ001")
	if req.Status != model.RequestStatusInProgress {
		t.Errorf("request status = %q, want %q", req.Status, model.RequestStatusInProgress)
	}

	// Items without a request still start, with the default duration.
	p2, err := e.Start(ctx, StartInput{Machine: "Autoclave-1", Method: "Dry Heat", ItemID: "SUR001"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p2.Duration != model.DefaultDuration {
		t.Errorf("duration = %d, want %d", p2.Duration, model.DefaultDuration)
	}
}

func TestPauseResume(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	p, _ := e.Start(ctx, StartInput{Machine: "Autoclave-1", Method: "Steam Sterilization", ItemID: "REQ001"})

	if _, err := e.Resume(ctx, p.ID); !errors.Is(err, ErrTransition) {
		t.Errorf("Resume(in progress) error = %v, want ErrTransition", err)
	}

	paused, err := e.Pause(ctx, p.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.Status != model.ProcessStatusPaused || paused.PausedAt == "" {
		t.Errorf("unexpected paused process %+v", paused)
	}
	if _, err := e.Pause(ctx, p.ID); !errors.Is(err, ErrTransition) {
		t.Errorf("Pause(paused) error = %v, want ErrTransition", err)
	}

	resumed, err := e.Resume(ctx, p.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.Status != model.ProcessStatusInProgress || resumed.StartTime != p.StartTime {
		t.Errorf("unexpected resumed process %+v", resumed)
	}

	if _, err := e.Pause(ctx, "STE404"); !errors.Is(err, collection.ErrNotFound) {
		t.Errorf("Pause(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCompleteFromRequest(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ001", Department: "ICU", Items: "Scalpel (2)", Quantity: 2, Status: model.RequestStatusRequested})
	p, _ := e.Start(ctx, StartInput{Machine: "Autoclave-1", Method: "Steam Sterilization", ItemID: "REQ001"})
	e.Pause(ctx, p.ID)

	done, err := e.Complete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.ProcessStatusCompleted || done.EndTime != "12:00" || done.CompletedAt == "" {
		t.Errorf("unexpected completed process %+v", done)
	}

	want := []model.AvailableItem{{
		ID:              "REQ001",
		Department:      "ICU",
		Items:           "Scalpel (2)",
		Quantity:        2,
		Status:          model.AvailableStatusSterilized,
		ReadyTime:       "12:00",
		SterilizationID: p.ID,
		Machine:         "Autoclave-1",
		Process:         "Steam Sterilization",
	}}
	if diff := cmp.Diff(want, list[model.AvailableItem](t, s, model.CollectionAvailable)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}

	req, _ := collection.Get[model.Request](ctx, s, model.CollectionRequests, "REQ001")
	if req.Status != model.RequestStatusCompleted {
		t.Errorf("request status = %q, want Completed", req.Status)
	}

	if _, err := e.Complete(ctx, p.ID); !errors.Is(err, ErrTransition) {
		t.Errorf("second Complete error = %v, want ErrTransition", err)
	}
}

func TestCompleteFallsBackToProcess(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	p, _ := e.Start(ctx, StartInput{Machine: "Autoclave-3", Method: "Plasma Sterilization", ItemID: "X-1"})
	if _, err := e.Complete(ctx, p.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	pool := list[model.AvailableItem](t, s, model.CollectionAvailable)
	if len(pool) != 1 {
		t.Fatalf("expected 1 pool entry, got %d", len(pool))
	}
	got := pool[0]
	if got.Department != "Autoclave-3" || got.Items != "Plasma Sterilization" || got.Quantity != 1 {
		t.Errorf("unexpected fallback entry %+v", got)
	}
}

func TestCompleteUpdatesExistingEntry(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionAvailable, model.AvailableItem{
		ID: "REQ001", Department: "ICU", Items: "Forceps (1)", Quantity: 1,
		Status: model.AvailableStatusSterilized, ReadyTime: "08:00", SterilizationID: "OLD",
	})
	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ001", Department: "OT", Items: "Other", Quantity: 9})

	p, _ := e.Start(ctx, StartInput{Machine: "Autoclave-2", Method: "Steam Sterilization", ItemID: "REQ001"})
	if _, err := e.Complete(ctx, p.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	want := []model.AvailableItem{{
		ID: "REQ001", Department: "ICU", Items: "Forceps (1)", Quantity: 1,
		Status: model.AvailableStatusSterilized, ReadyTime: "12:00", SterilizationID: p.ID,
		Machine: "Autoclave-2", Process: "Steam Sterilization",
	}}
	if diff := cmp.Diff(want, list[model.AvailableItem](t, s, model.CollectionAvailable)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

func TestDue(t *testing.T) {
	tests := []struct {
		name string
		p    model.SterilizationProcess
		want bool
	}{
		{"elapsed by timestamp", model.SterilizationProcess{Status: "In Progress", Duration: 45, StartedAt: testNow.Add(-45 * time.Minute).Format(time.RFC3339)}, true},
		{"running by timestamp", model.SterilizationProcess{Status: "In Progress", Duration: 45, StartedAt: testNow.Add(-44 * time.Minute).Format(time.RFC3339)}, false},
		{"elapsed by clock", model.SterilizationProcess{Status: "In Progress", Duration: 60, StartTime: "11:00"}, true},
		{"running by clock", model.SterilizationProcess{Status: "In Progress", Duration: 60, StartTime: "11:30"}, false},
		{"paused", model.SterilizationProcess{Status: "Paused", Duration: 1, StartTime: "08:00"}, false},
		{"completed", model.SterilizationProcess{Status: "Completed", Duration: 1, StartTime: "08:00"}, false},
		{"no duration", model.SterilizationProcess{Status: "In Progress", StartTime: "08:00"}, false},
		{"no start", model.SterilizationProcess{Status: "In Progress", Duration: 1}, false},
	}
	for _, tt := range tests {
		if got := Due(tt.p, testNow); got != tt.want {
			t.Errorf("%s: Due = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSweepCompletesElapsedProcesses(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{
		ID: "STE001", Machine: "Autoclave-1", Process: "Steam Sterilization", ItemID: "REQ001",
		Status: model.ProcessStatusInProgress, Duration: 45,
		StartTime: model.Clock(testNow.Add(-46 * time.Minute)),
		StartedAt: model.Timestamp(testNow.Add(-46 * time.Minute)),
	})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{
		ID: "STE002", Machine: "Autoclave-2", Process: "Steam Sterilization", ItemID: "REQ002",
		Status: model.ProcessStatusInProgress, Duration: 45,
		StartTime: model.Clock(testNow.Add(-10 * time.Minute)),
	})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{
		ID: "STE003", Machine: "Autoclave-1", ItemID: "REQ003",
		Status: model.ProcessStatusPaused, Duration: 45, StartTime: "06:00",
	})

	result, err := e.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if diff := cmp.Diff([]string{"STE001"}, result.Completed); diff != "" {
		t.Errorf("completed mismatch (-want +got):\n%s", diff)
	}

	got, _ := collection.Get[model.SterilizationProcess](ctx, s, model.CollectionProcesses, "STE001")
	if got.Status != model.ProcessStatusCompleted {
		t.Errorf("STE001 status = %q, want Completed", got.Status)
	}
	if diff := cmp.Diff([]string{"REQ001"}, poolIDs(t, s)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}

	again, err := e.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if len(again.Completed) != 0 {
		t.Errorf("second sweep completed %v", again.Completed)
	}
	if diff := cmp.Diff([]string{"REQ001"}, poolIDs(t, s)); diff != "" {
		t.Errorf("pool after second sweep (-want +got):\n%s", diff)
	}
}

func TestSweepSkipsOverlappingRuns(t *testing.T) {
	e, _ := newTestEngine(t)

	e.sweeping.Lock()
	result, err := e.Sweep(context.Background())
	e.sweeping.Unlock()

	if err != nil || !result.Skipped {
		t.Errorf("Sweep during sweep = %+v, %v; want skipped", result, err)
	}
}

func TestIssueFromPool(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionAvailable, model.AvailableItem{
		ID: "REQ001", Department: "ICU", Items: "Scalpel (2)", Quantity: 2,
		Status: model.AvailableStatusSterilized, SterilizationID: "STE001",
	})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ002", Status: model.AvailableStatusSterilized})

	issued, err := e.Issue(ctx, IssueInput{ItemID: "REQ001", Department: "OT"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	want := model.IssueItem{
		ID: "ISS001", RequestID: "REQ001", Department: "OT", Items: "Scalpel (2)", Quantity: 2,
		IssuedTime: "12:00", IssuedDate: "2024-03-10", Status: model.IssueStatusIssued, SterilizationID: "STE001",
	}
	if diff := cmp.Diff(want, issued); diff != "" {
		t.Errorf("issue mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"REQ002"}, poolIDs(t, s)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

func TestIssueFromRequest(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ005", Department: "ER", Items: "Gauze (3)", Quantity: 3})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ002", Status: model.AvailableStatusSterilized})

	issued, err := e.Issue(ctx, IssueInput{ItemID: "REQ005", Department: "ER"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.Status != model.IssueStatusNonSterilized || issued.Items != "Gauze (3)" || issued.Quantity != 3 {
		t.Errorf("unexpected issue %+v", issued)
	}
	if diff := cmp.Diff([]string{"REQ002"}, poolIDs(t, s)); diff != "" {
		t.Errorf("pool changed (-want +got):\n%s", diff)
	}
}

func TestIssueErrors(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Issue(ctx, IssueInput{Department: "OT"}); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("missing item error = %v, want ErrInvalid", err)
	}
	if _, err := e.Issue(ctx, IssueInput{ItemID: "REQ001"}); !errors.Is(err, model.ErrInvalid) {
		t.Errorf("missing department error = %v, want ErrInvalid", err)
	}
	if _, err := e.Issue(ctx, IssueInput{ItemID: "REQ404", Department: "OT"}); !errors.Is(err, collection.ErrNotFound) {
		t.Errorf("unknown item error = %v, want ErrNotFound", err)
	}

	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ001"})
	if !e.beginIssue("REQ001") {
		t.Fatal("beginIssue failed")
	}
	if _, err := e.Issue(ctx, IssueInput{ItemID: "REQ001", Department: "OT"}); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent issue error = %v, want ErrBusy", err)
	}
	e.endIssue("REQ001")
	if _, err := e.Issue(ctx, IssueInput{ItemID: "REQ001", Department: "OT"}); err != nil {
		t.Errorf("Issue after release: %v", err)
	}
	if n := len(list[model.IssueItem](t, s, model.CollectionIssues)); n != 1 {
		t.Errorf("expected 1 issue record, got %d", n)
	}
}

func seedCompleted(t *testing.T, s collection.Store) {
	t.Helper()
	seed(t, s, model.CollectionRequests, model.Request{ID: "REQ001", Department: "ICU", Items: "Scalpel (2)", Quantity: 2})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE001", ItemID: "REQ001", Machine: "Autoclave-1", Process: "Steam Sterilization", Status: model.ProcessStatusCompleted, EndTime: "09:15"})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE002", ItemID: "REQ002", Machine: "Autoclave-2", Process: "Steam Sterilization", Status: model.ProcessStatusCompleted})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE003", ItemID: "REQ002", Machine: "Autoclave-2", Process: "Steam Sterilization", Status: model.ProcessStatusCompleted})
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE004", ItemID: "REQ003", Status: model.ProcessStatusInProgress})
}

func TestRefreshIsIdempotent(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	seedCompleted(t, s)

	first, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if first != (RefreshResult{Added: 2}) {
		t.Errorf("first refresh = %+v, want 2 added", first)
	}
	ids := poolIDs(t, s)
	if diff := cmp.Diff([]string{"REQ001", "REQ002"}, ids); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}

	pool := list[model.AvailableItem](t, s, model.CollectionAvailable)
	if pool[0].Department != "ICU" || pool[0].ReadyTime != "09:15" || pool[1].SterilizationID != "STE003" {
		t.Errorf("unexpected pool entries %+v", pool)
	}

	second, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if second != (RefreshResult{}) {
		t.Errorf("second refresh = %+v, want zero", second)
	}
	if diff := cmp.Diff(ids, poolIDs(t, s)); diff != "" {
		t.Errorf("pool changed on second refresh (-want +got):\n%s", diff)
	}
}

func TestRefreshHealsInterruptedIssue(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE001", ItemID: "REQ001", Status: model.ProcessStatusCompleted})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ001", SterilizationID: "STE001", Status: model.AvailableStatusSterilized})
	seed(t, s, model.CollectionIssues, model.IssueItem{ID: "ISS001", RequestID: "REQ001", SterilizationID: "STE001", Status: model.IssueStatusIssued})

	result, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result != (RefreshResult{Removed: 1}) {
		t.Errorf("refresh = %+v, want 1 removed", result)
	}
	if ids := poolIDs(t, s); len(ids) != 0 {
		t.Errorf("expected empty pool, got %v", ids)
	}

	// A new run of the same item comes back.
	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE002", ItemID: "REQ001", Status: model.ProcessStatusCompleted})
	result, _ = e.Refresh(ctx)
	if result != (RefreshResult{Added: 1}) {
		t.Errorf("refresh = %+v, want 1 added", result)
	}
}

func TestDedupe(t *testing.T) {
	items := []model.AvailableItem{
		{ID: "REQ001", Department: "ICU"},
		{ID: "REQ002", Department: "OT"},
		{ID: "REQ001", Department: "ER"},
	}
	want := []model.AvailableItem{
		{ID: "REQ001", Department: "ICU"},
		{ID: "REQ002", Department: "OT"},
	}
	if diff := cmp.Diff(want, Dedupe(items)); diff != "" {
		t.Errorf("Dedupe mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupePool(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ001", Department: "ICU"})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ001", Department: "ER"})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ002", Department: "OT"})

	result, err := e.DedupePool(ctx)
	if err != nil {
		t.Fatalf("DedupePool: %v", err)
	}
	if result != (RewriteResult{Deleted: 2, Inserted: 2}) {
		t.Errorf("DedupePool = %+v", result)
	}

	pool := list[model.AvailableItem](t, s, model.CollectionAvailable)
	if len(pool) != 2 || pool[0].ID != "REQ001" || pool[0].Department != "ICU" || pool[1].ID != "REQ002" {
		t.Errorf("unexpected pool %+v", pool)
	}

	again, _ := e.DedupePool(ctx)
	if again != (RewriteResult{}) {
		t.Errorf("DedupePool on unique pool = %+v, want no-op", again)
	}
}

func TestRewrite(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "OLD001"})

	result, err := e.Rewrite(ctx, []model.AvailableItem{
		{ID: "REQ001", Department: "ICU"},
		{ID: "REQ001", Department: "ER"},
		{ID: "REQ003"},
	})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result != (RewriteResult{Deleted: 1, Inserted: 2}) {
		t.Errorf("Rewrite = %+v", result)
	}
	if diff := cmp.Diff([]string{"REQ001", "REQ003"}, poolIDs(t, s)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

// failingStore fails creates of selected available item ids.
type failingStore struct {
	collection.Store
	failIDs map[string]bool
}

func (f *failingStore) Create(ctx context.Context, name string, record any) (json.RawMessage, error) {
	if item, ok := record.(model.AvailableItem); ok && name == model.CollectionAvailable && f.failIDs[item.ID] {
		return nil, &collection.StatusError{Code: 503, Body: "unavailable"}
	}
	return f.Store.Create(ctx, name, record)
}

func TestRefreshPartialFailure(t *testing.T) {
	base := store.NewCollections(db.NewTestDB(t))
	seedCompleted(t, base)

	fs := &failingStore{Store: base, failIDs: map[string]bool{"REQ001": true}}
	e := New(fs, WithClock(func() time.Time { return testNow }))

	result, err := e.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if result != (RefreshResult{Added: 1, Failed: 1}) {
		t.Errorf("refresh = %+v, want 1 added and 1 failed", result)
	}
	if diff := cmp.Diff([]string{"REQ002"}, poolIDs(t, base)); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}

	// The next pass heals once the store recovers.
	healed := New(base, WithClock(func() time.Time { return testNow }))
	result, err = healed.Refresh(context.Background())
	if err != nil || result != (RefreshResult{Added: 1}) {
		t.Errorf("healing refresh = %+v, %v", result, err)
	}
}

func TestMissingUsesLatestRun(t *testing.T) {
	processes := []model.SterilizationProcess{
		{ID: "STE001", ItemID: "REQ001", Status: model.ProcessStatusCompleted},
		{ID: "STE002", ItemID: "REQ002", Status: model.ProcessStatusCompleted},
		{ID: "STE003", ItemID: "REQ001", Status: model.ProcessStatusCompleted},
		{ID: "STE004", ItemID: "REQ002", Status: model.ProcessStatusPaused},
	}
	issues := []model.IssueItem{{ID: "ISS001", RequestID: "REQ001", SterilizationID: "STE003"}}

	var ids []string
	for _, p := range Missing(nil, processes, issues) {
		ids = append(ids, p.ID)
	}
	// STE001 is older than the issued run of REQ001 and must not come back.
	if diff := cmp.Diff([]string{"STE002"}, ids); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestIssueWithoutRunStaysIssued(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	seed(t, s, model.CollectionProcesses, model.SterilizationProcess{ID: "STE001", ItemID: "REQ001", Status: model.ProcessStatusCompleted})
	seed(t, s, model.CollectionAvailable, model.AvailableItem{ID: "REQ001", Department: "ICU", Status: model.AvailableStatusSterilized})

	issued, err := e.Issue(ctx, IssueInput{ItemID: "REQ001", Department: "ICU"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if issued.SterilizationID != "STE001" {
		t.Errorf("sterilization id = %q, want STE001", issued.SterilizationID)
	}

	result, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result != (RefreshResult{}) {
		t.Errorf("refresh = %+v, want no changes", result)
	}
	if ids := poolIDs(t, s); len(ids) != 0 {
		t.Errorf("issued item came back: %v", ids)
	}
}
