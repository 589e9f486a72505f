package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

const requestedItemsLabel = "Requested Item"

// IssueInput names the item to issue and the receiving department.
type IssueInput struct {
	ItemID     string `json:"itemId"`
	Department string `json:"department"`
}

// Issue hands an item out to a department. Items in the available pool are
// issued as sterilized and leave the pool. Otherwise a request with the id
// is issued as non-sterilized and the pool is left alone.
//
// The issue record is written before the pool entry is removed. If the
// removal fails the error is returned and the next Refresh drops the entry.
func (e *Engine) Issue(ctx context.Context, in IssueInput) (model.IssueItem, error) {
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.Department = strings.TrimSpace(in.Department)
	switch {
	case in.ItemID == "":
		return model.IssueItem{}, fmt.Errorf("%w: item id is required", model.ErrInvalid)
	case in.Department == "":
		return model.IssueItem{}, fmt.Errorf("%w: department is required", model.ErrInvalid)
	}

	if !e.beginIssue(in.ItemID) {
		return model.IssueItem{}, fmt.Errorf("%s: %w", in.ItemID, ErrBusy)
	}
	defer e.endIssue(in.ItemID)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	issue := model.IssueItem{
		RequestID:  in.ItemID,
		Department: in.Department,
		IssuedTime: model.Clock(now),
		IssuedDate: model.Date(now),
	}

	fromPool := false
	available, err := collection.Get[model.AvailableItem](ctx, e.store, model.CollectionAvailable, in.ItemID)
	switch {
	case err == nil:
		fromPool = true
		issue.Items = available.Items
		issue.Quantity = available.Quantity
		issue.Status = model.IssueStatusIssued
		issue.SterilizationID = available.SterilizationID
		if issue.SterilizationID == "" {
			issue.SterilizationID = e.latestRun(ctx, in.ItemID)
		}
	case errors.Is(err, collection.ErrNotFound):
		req, err := collection.Get[model.Request](ctx, e.store, model.CollectionRequests, in.ItemID)
		if err != nil {
			return model.IssueItem{}, err
		}
		issue.Items = req.Items
		issue.Quantity = req.Quantity
		issue.Status = model.IssueStatusNonSterilized
	default:
		return model.IssueItem{}, fmt.Errorf("checking available item %s: %w", in.ItemID, err)
	}
	if issue.Items == "" {
		issue.Items = requestedItemsLabel
	}
	if issue.Quantity == 0 {
		issue.Quantity = 1
	}

	created, err := collection.Create(ctx, e.store, model.CollectionIssues, issue)
	if err != nil {
		return model.IssueItem{}, fmt.Errorf("recording issue: %w", err)
	}
	e.recorder.ItemIssued(created.Status)

	if fromPool {
		if err := e.store.Delete(ctx, model.CollectionAvailable, in.ItemID); err != nil && !errors.Is(err, collection.ErrNotFound) {
			return created, fmt.Errorf("removing %s from available items: %w", in.ItemID, err)
		}
	}
	return created, nil
}

// latestRun returns the id of the last completed process for itemID, or ""
// when there is none. Pool entries written by other clients may lack the run
// that produced them.
func (e *Engine) latestRun(ctx context.Context, itemID string) string {
	processes, err := collection.List[model.SterilizationProcess](ctx, e.store, model.CollectionProcesses)
	if err != nil {
		slog.Warn("looking up sterilization run", "id", itemID, "error", err)
		return ""
	}
	id := ""
	for _, p := range processes {
		if p.ItemID == itemID && p.Status == model.ProcessStatusCompleted {
			id = p.ID
		}
	}
	return id
}

func (e *Engine) beginIssue(id string) bool {
	e.issuingMu.Lock()
	defer e.issuingMu.Unlock()
	if _, busy := e.issuing[id]; busy {
		return false
	}
	e.issuing[id] = struct{}{}
	return true
}

func (e *Engine) endIssue(id string) {
	e.issuingMu.Lock()
	delete(e.issuing, id)
	e.issuingMu.Unlock()
}
