package report

import (
	"fmt"
	"time"

	"github.com/erazemk/cssd/internal/model"
)

// Stats are the dashboard counters.
type Stats struct {
	ActiveRequests          int `json:"activeRequests"`
	SterilizationInProgress int `json:"sterilizationInProgress"`
	ItemsReady              int `json:"itemsReady"`
	LowStockItems           int `json:"lowStockItems"`
}

// Activity is one line of the dashboard's recent activity list.
type Activity struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Description string `json:"desc"`
}

// DashboardView is everything the dashboard shows.
type DashboardView struct {
	Stats          Stats      `json:"stats"`
	RecentActivity []Activity `json:"recentActivity"`
}

// Dashboard derives the dashboard from the three collections it reads.
func Dashboard(requests []model.Request, processes []model.SterilizationProcess, stock []model.StockItem) DashboardView {
	var v DashboardView

	var latestRequest *model.Request
	var latestRequestAt time.Time
	for i, r := range requests {
		if model.ActiveRequest(r.Status) {
			v.Stats.ActiveRequests++
		}
		if r.Status != model.RequestStatusRequested {
			continue
		}
		at := requestTime(r)
		if latestRequest == nil || at.After(latestRequestAt) {
			latestRequest, latestRequestAt = &requests[i], at
		}
	}

	var latestDone *model.SterilizationProcess
	var latestDoneAt time.Time
	for i, p := range processes {
		switch p.Status {
		case model.ProcessStatusInProgress:
			v.Stats.SterilizationInProgress++
		case model.ProcessStatusCompleted:
			v.Stats.ItemsReady++
			at := completionTime(p)
			if latestDone == nil || at.After(latestDoneAt) {
				latestDone, latestDoneAt = &processes[i], at
			}
		}
	}

	// The stored status may predate the last quantity change.
	for _, s := range stock {
		if model.StockStatus(int(s.Quantity), int(s.MinLevel)) == model.StockStatusLowStock {
			v.Stats.LowStockItems++
		}
	}

	v.RecentActivity = []Activity{}
	if latestDone != nil {
		a := Activity{Type: "sterilization", ID: latestDone.ItemID, Description: "Sterilization process completed"}
		if a.ID == "" {
			a.ID = latestDone.ID
		}
		if latestDone.Process != "" {
			item := latestDone.ItemID
			if item == "" {
				item = "item"
			}
			a.Description = fmt.Sprintf("%s finished for %s", latestDone.Process, item)
		}
		v.RecentActivity = append(v.RecentActivity, a)
	}
	if latestRequest != nil {
		a := Activity{Type: "request", ID: latestRequest.ID, Description: "New request submitted"}
		if items := latestRequest.Items.Display(); items != "" {
			a.Description = fmt.Sprintf("%s requested from %s", items, latestRequest.Department)
		}
		v.RecentActivity = append(v.RecentActivity, a)
	}

	return v
}

func requestTime(r model.Request) time.Time {
	day, ok := ParseDay(r.Date)
	if !ok {
		return time.Time{}
	}
	if clock, err := time.Parse(model.ClockLayout, r.Time); err == nil {
		return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	}
	return day
}

func completionTime(p model.SterilizationProcess) time.Time {
	for _, s := range []string{p.CompletedAt, p.StartedAt} {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
