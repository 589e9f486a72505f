package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/erazemk/cssd/internal/model"
)

// SortForDisplay returns a copy of records in table order: records with a
// parseable date first, newest date first, then records without one. Ties
// within each group go to the highest id. key returns a record's id and date.
func SortForDisplay[T any](records []T, key func(T) (id, date string)) []T {
	out := slices.Clone(records)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		idA, dateA := key(a)
		idB, dateB := key(b)
		dayA, okA := ParseDay(dateA)
		dayB, okB := ParseDay(dateB)
		switch {
		case okA && okB:
			if c := dayB.Compare(dayA); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return CompareIDs(idB, idA)
	})
	return out
}

// CompareIDs orders ids that share a non-numeric prefix by their numeric
// suffix, so REQ010 sorts after REQ002. Other ids compare as strings.
func CompareIDs(a, b string) int {
	prefixA, numA, okA := splitID(a)
	prefixB, numB, okB := splitID(b)
	if okA && okB && prefixA == prefixB {
		if c := cmp.Compare(numA, numB); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func splitID(id string) (prefix string, n int, ok bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id, 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return id, 0, false
	}
	return id[:i], n, true
}

// Display sort keys per collection.

func RequestKey(r model.Request) (string, string) { return r.ID, r.Date }
func ReceiveKey(r model.ReceiveItem) (string, string) { return r.ID, r.Date }
func ProcessKey(p model.SterilizationProcess) (string, string) { return p.ID, p.StartedAt }
func AvailableKey(a model.AvailableItem) (string, string) { return a.ID, "" }
func IssueKey(i model.IssueItem) (string, string) { return i.ID, i.IssuedDate }
func StockKey(s model.StockItem) (string, string) { return s.ID, "" }
func ConsumptionKey(c model.ConsumptionRecord) (string, string) { return c.ID, c.Date }
func KitKey(k model.CreatedKit) (string, string) { return k.ID, k.Date }
