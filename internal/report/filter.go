package report

import (
	"strings"

	"github.com/erazemk/cssd/internal/model"
)

// All is the categorical filter value that matches every record.
const All = "all"

// Query holds the filters a listing can apply. Empty values are inactive.
type Query struct {
	Range      DateRange
	Status     string
	Priority   string
	Department string
	Search     string
}

// Fields tells Filter where a record type keeps each filterable field.
// A nil accessor makes the matching filter a no-op for that type.
type Fields[T any] struct {
	Date       func(T) string
	Status     func(T) string
	Priority   func(T) string
	Department func(T) string
	Search     func(T) []string
}

// Filter returns the records matching every active filter in q. The input
// slice is never modified.
func Filter[T any](records []T, q Query, f Fields[T]) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	if f.Date != nil {
		records = FilterDateRange(records, q.Range, f.Date)
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if f.Status != nil && !MatchCategory(f.Status(r), q.Status) {
			continue
		}
		if f.Priority != nil && !MatchCategory(f.Priority(r), q.Priority) {
			continue
		}
		if f.Department != nil && !MatchCategory(f.Department(r), q.Department) {
			continue
		}
		if f.Search != nil && !matchSearch(term, f.Search(r)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterDateRange keeps records whose date falls within r. An unbounded
// range returns records as given.
func FilterDateRange[T any](records []T, r DateRange, date func(T) string) []T {
	if r.Unbounded() {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r.ContainsDate(date(rec)) {
			out = append(out, rec)
		}
	}
	return out
}

// MatchCategory reports whether value passes a categorical filter.
func MatchCategory(value, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, All) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), want)
}

func matchSearch(term string, fields []string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Field accessors for every collection.
var (
	RequestFields = Fields[model.Request]{
		Date:       func(r model.Request) string { return r.Date },
		Status:     func(r model.Request) string { return r.Status },
		Priority:   func(r model.Request) string { return r.Priority },
		Department: func(r model.Request) string { return r.Department },
		Search: func(r model.Request) []string {
			return []string{r.ID, r.Department, r.Items.Display(), r.RequestedBy}
		},
	}

	ReceiveFields = Fields[model.ReceiveItem]{
		Date:       func(r model.ReceiveItem) string { return r.Date },
		Status:     func(r model.ReceiveItem) string { return r.Status },
		Priority:   func(r model.ReceiveItem) string { return r.Priority },
		Department: func(r model.ReceiveItem) string { return r.Department },
		Search: func(r model.ReceiveItem) []string {
			return []string{r.ID, r.RequestID, r.Department, r.Items.Display(), r.RequestedBy}
		},
	}

	ProcessFields = Fields[model.SterilizationProcess]{
		Date:   func(p model.SterilizationProcess) string { return p.StartedAt },
		Status: func(p model.SterilizationProcess) string { return p.Status },
		Search: func(p model.SterilizationProcess) []string {
			return []string{p.ID, p.ItemID, p.Machine, p.Process}
		},
	}

	AvailableFields = Fields[model.AvailableItem]{
		Status:     func(a model.AvailableItem) string { return a.Status },
		Department: func(a model.AvailableItem) string { return a.Department },
		Search: func(a model.AvailableItem) []string {
			return []string{a.ID, a.Department, a.Items.Display(), a.SterilizationID}
		},
	}

	IssueFields = Fields[model.IssueItem]{
		Date:       func(i model.IssueItem) string { return i.IssuedDate },
		Status:     func(i model.IssueItem) string { return i.Status },
		Department: func(i model.IssueItem) string { return i.Department },
		Search: func(i model.IssueItem) []string {
			return []string{i.ID, i.RequestID, i.Department, i.Items.Display()}
		},
	}

	StockFields = Fields[model.StockItem]{
		Status: func(s model.StockItem) string { return s.Status },
		Search: func(s model.StockItem) []string {
			return []string{s.ID, s.Name, s.Category, s.Location}
		},
	}

	ConsumptionFields = Fields[model.ConsumptionRecord]{
		Date:       func(c model.ConsumptionRecord) string { return c.Date },
		Department: func(c model.ConsumptionRecord) string { return c.Dept },
		Search: func(c model.ConsumptionRecord) []string {
			return []string{c.ID, c.Type, c.Dept, c.Items.Display()}
		},
	}

	KitFields = Fields[model.CreatedKit]{
		Date:       func(k model.CreatedKit) string { return k.Date },
		Status:     func(k model.CreatedKit) string { return k.Status },
		Priority:   func(k model.CreatedKit) string { return k.Priority },
		Department: func(k model.CreatedKit) string { return k.Department },
		Search: func(k model.CreatedKit) []string {
			return []string{k.ID, k.Name, k.Department, k.Items.Display(), k.RequestedBy}
		},
	}
)
