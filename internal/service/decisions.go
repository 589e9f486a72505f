package service

import (
	"context"
	"fmt"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// Decision is the outcome of an approval.
type Decision bool

// Decisions.
const (
	Approve Decision = true
	Reject  Decision = false
)

func (d Decision) status() string {
	if d == Approve {
		return model.RequestStatusApproved
	}
	return model.RequestStatusRejected
}

// DecideRequest approves or rejects a request that is still Requested.
func (s *Service) DecideRequest(ctx context.Context, id string, d Decision) (model.Request, error) {
	req, err := collection.Get[model.Request](ctx, s.store, model.CollectionRequests, id)
	if err != nil {
		return model.Request{}, err
	}
	if req.Status != "" && req.Status != model.RequestStatusRequested {
		return req, fmt.Errorf("request %s is %s: %w", id, req.Status, model.ErrTransition)
	}
	return collection.Patch[model.Request](ctx, s.store, model.CollectionRequests, id, map[string]any{"status": d.status()})
}

// DecideReceive moves a pending receive item to Approved or Rejected.
func (s *Service) DecideReceive(ctx context.Context, id string, d Decision) (model.ReceiveItem, error) {
	rec, err := collection.Get[model.ReceiveItem](ctx, s.store, model.CollectionReceiveItems, id)
	if err != nil {
		return model.ReceiveItem{}, err
	}
	if rec.Status != "" && rec.Status != model.ReceiveStatusPending {
		return rec, fmt.Errorf("receive item %s is %s: %w", id, rec.Status, model.ErrTransition)
	}
	status := model.ReceiveStatusRejected
	if d == Approve {
		status = model.ReceiveStatusApproved
	}
	return collection.Patch[model.ReceiveItem](ctx, s.store, model.CollectionReceiveItems, id, map[string]any{"status": status})
}
