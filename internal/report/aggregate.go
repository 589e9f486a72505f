package report

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/erazemk/cssd/internal/model"
)

// SumBy groups records by key and sums value within each group.
func SumBy[T any](records []T, key func(T) string, value func(T) int) map[string]int {
	sums := make(map[string]int)
	for _, r := range records {
		sums[key(r)] += value(r)
	}
	return sums
}

// WeekNumber returns the chart week of t: ceil((dayOfYear + weekdayOfJan1 + 1) / 7)
// with a zero-based day of year and Sunday as weekday 0. This is not ISO
// week numbering.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	dayOfYear := t.YearDay() - 1
	n := dayOfYear + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}

// WeekLabel returns "Week N" for t.
func WeekLabel(t time.Time) string {
	return "Week " + strconv.Itoa(WeekNumber(t))
}

// WeekCount is one point of the weekly consumption trend.
type WeekCount struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// DepartmentCount is one bar of the department consumption chart.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// WeeklyConsumption sums used items per chart week, ordered by week number.
// Records without a parseable date are left out.
func WeeklyConsumption(records []model.ConsumptionRecord) []WeekCount {
	days := make(map[int]time.Time)
	dated := make([]model.ConsumptionRecord, 0, len(records))
	for _, r := range records {
		day, ok := ParseDay(r.Date)
		if !ok {
			continue
		}
		if _, seen := days[WeekNumber(day)]; !seen {
			days[WeekNumber(day)] = day
		}
		dated = append(dated, r)
	}
	sums := SumBy(dated, func(r model.ConsumptionRecord) string {
		day, _ := ParseDay(r.Date)
		return WeekLabel(day)
	}, usedCount)

	weeks := make([]int, 0, len(days))
	for w := range days {
		weeks = append(weeks, w)
	}
	slices.Sort(weeks)

	out := make([]WeekCount, 0, len(weeks))
	for _, w := range weeks {
		label := WeekLabel(days[w])
		out = append(out, WeekCount{Week: label, Count: sums[label]})
	}
	return out
}

// DepartmentConsumption sums used items per department, largest first.
// Departments with equal sums keep the order in which they first appear.
func DepartmentConsumption(records []model.ConsumptionRecord) []DepartmentCount {
	sums := SumBy(records, func(r model.ConsumptionRecord) string { return r.Dept }, usedCount)

	out := []DepartmentCount{}
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Dept == "" || seen[r.Dept] {
			continue
		}
		seen[r.Dept] = true
		out = append(out, DepartmentCount{Department: r.Dept, Count: sums[r.Dept]})
	}
	slices.SortStableFunc(out, func(a, b DepartmentCount) int {
		return b.Count - a.Count
	})
	return out
}

func usedCount(r model.ConsumptionRecord) int { return int(r.Used) }

// Summary holds the headline figures of a consumption report.
type Summary struct {
	TotalConsumption  int     `json:"totalConsumption"`
	TotalSurgeries    int     `json:"totalSurgeries"`
	AveragePerSurgery float64 `json:"averagePerSurgery"`
}

// Summarize computes the report summary. The average is rounded to one
// decimal and is zero for an empty report.
func Summarize(records []model.ConsumptionRecord) Summary {
	s := Summary{TotalSurgeries: len(records)}
	for _, r := range records {
		s.TotalConsumption += int(r.Used)
	}
	if s.TotalSurgeries > 0 {
		avg := float64(s.TotalConsumption) / float64(s.TotalSurgeries)
		s.AveragePerSurgery = math.Round(avg*10) / 10
	}
	return s
}

// ConsumptionReport is the full derived view of a set of consumption records.
type ConsumptionReport struct {
	Summary     Summary                   `json:"summary"`
	Weekly      []WeekCount               `json:"weekly"`
	Departments []DepartmentCount         `json:"departments"`
	Records     []model.ConsumptionRecord `json:"records"`
}

// BuildConsumptionReport filters records with q and derives every chart.
func BuildConsumptionReport(records []model.ConsumptionRecord, q Query) ConsumptionReport {
	filtered := SortForDisplay(Filter(records, q, ConsumptionFields), ConsumptionKey)
	return ConsumptionReport{
		Summary:     Summarize(filtered),
		Weekly:      WeeklyConsumption(filtered),
		Departments: DepartmentConsumption(filtered),
		Records:     filtered,
	}
}
