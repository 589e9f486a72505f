package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// defaultRequester is recorded when a request names nobody.
const defaultRequester = "System"

// RequestInput is a new request for sterile items.
type RequestInput struct {
	Department  string       `json:"department"`
	Priority    string       `json:"priority"`
	RequestedBy string       `json:"requestedBy"`
	Date        string       `json:"date"`
	Items       []model.Line `json:"items"`
}

// KitInput is a new kit.
type KitInput struct {
	Name        string       `json:"name"`
	Department  string       `json:"department"`
	Priority    string       `json:"priority"`
	RequestedBy string       `json:"requestedBy"`
	Date        string       `json:"date"`
	Items       []model.Line `json:"items"`
}

// Intake is the result of a request or kit creation.
type Intake struct {
	Request *model.Request     `json:"request,omitempty"`
	Kit     *model.CreatedKit  `json:"kit,omitempty"`
	Receive *model.ReceiveItem `json:"receive,omitempty"`
}

func validateLines(lines []model.Line) (int, error) {
	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: at least one item is required", model.ErrInvalid)
	}
	total := 0
	for i, l := range lines {
		if strings.TrimSpace(l.Name) == "" {
			return 0, fmt.Errorf("%w: item %d has no name", model.ErrInvalid, i+1)
		}
		if l.Quantity <= 0 {
			return 0, fmt.Errorf("%w: item %d quantity must be positive", model.ErrInvalid, i+1)
		}
		total += int(l.Quantity)
	}
	return total, nil
}

func validatePriority(p string) error {
	if !model.ValidPriority(p) {
		return fmt.Errorf("%w: priority must be High, Medium or Low", model.ErrInvalid)
	}
	return nil
}

// CreateRequest records a request and its pending receive item. The request
// items are stored as "name (qty), ..." and the quantity is their sum.
func (s *Service) CreateRequest(ctx context.Context, in RequestInput) (Intake, error) {
	if err := required("department", in.Department); err != nil {
		return Intake{}, err
	}
	if err := validatePriority(in.Priority); err != nil {
		return Intake{}, err
	}
	date, err := normalizeDate("date", in.Date)
	if err != nil {
		return Intake{}, err
	}
	total, err := validateLines(in.Items)
	if err != nil {
		return Intake{}, err
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		in.RequestedBy = defaultRequester
	}

	now := s.now()
	req, err := collection.Create(ctx, s.store, model.CollectionRequests, model.Request{
		Department:  strings.TrimSpace(in.Department),
		Items:       model.RenderLines(in.Items),
		Quantity:    model.Count(total),
		Priority:    in.Priority,
		RequestedBy: in.RequestedBy,
		Status:      model.RequestStatusRequested,
		Date:        date,
		Time:        model.Clock(now),
	})
	if err != nil {
		return Intake{}, fmt.Errorf("creating request: %w", err)
	}

	out := Intake{Request: &req}
	rec, err := s.mirrorReceive(ctx, req.ID, req.Department, req.Items, req.Quantity, req.Priority, req.RequestedBy, req.Date)
	if err != nil {
		return out, err
	}
	out.Receive = &rec
	return out, nil
}

// CreateKit records a kit and its pending receive item. Kit items are stored
// JSON-encoded and the quantity is their sum.
func (s *Service) CreateKit(ctx context.Context, in KitInput) (Intake, error) {
	if err := required("kit name", in.Name); err != nil {
		return Intake{}, err
	}
	if err := required("department", in.Department); err != nil {
		return Intake{}, err
	}
	if err := validatePriority(in.Priority); err != nil {
		return Intake{}, err
	}
	total, err := validateLines(in.Items)
	if err != nil {
		return Intake{}, err
	}

	now := s.now()
	date := model.Date(now)
	if strings.TrimSpace(in.Date) != "" {
		if date, err = normalizeDate("date", in.Date); err != nil {
			return Intake{}, err
		}
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		in.RequestedBy = defaultRequester
	}

	kit, err := collection.Create(ctx, s.store, model.CollectionKits, model.CreatedKit{
		Name:        strings.TrimSpace(in.Name),
		Department:  strings.TrimSpace(in.Department),
		Items:       model.EncodeLines(in.Items),
		Quantity:    model.Count(total),
		Priority:    in.Priority,
		RequestedBy: in.RequestedBy,
		Status:      model.KitStatusActive,
		Date:        date,
		Time:        model.Clock(now),
		CreatedAt:   model.Timestamp(now),
	})
	if err != nil {
		return Intake{}, fmt.Errorf("creating kit: %w", err)
	}

	out := Intake{Kit: &kit}
	rec, err := s.mirrorReceive(ctx, kit.ID, kit.Department, kit.Items, kit.Quantity, kit.Priority, kit.RequestedBy, kit.Date)
	if err != nil {
		return out, err
	}
	out.Receive = &rec
	return out, nil
}

func (s *Service) mirrorReceive(ctx context.Context, requestID, department string, items model.Items, quantity model.Count, priority, requestedBy, date string) (model.ReceiveItem, error) {
	now := s.now()
	rec, err := collection.Create(ctx, s.store, model.CollectionReceiveItems, model.ReceiveItem{
		RequestID:    requestID,
		Department:   department,
		Items:        items,
		Quantity:     quantity,
		Priority:     priority,
		RequestedBy:  requestedBy,
		Status:       model.ReceiveStatusPending,
		Date:         date,
		Time:         model.Clock(now),
		ReceivedDate: model.Date(now),
		ReceivedTime: model.Clock(now),
	})
	if err != nil {
		return model.ReceiveItem{}, fmt.Errorf("creating receive item for %s: %w", requestID, err)
	}
	return rec, nil
}
