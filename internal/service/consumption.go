package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/report"
)

// ConsumptionInput is the item usage of one surgery.
type ConsumptionInput struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Dept      string      `json:"dept"`
	Date      string      `json:"date"`
	Before    int         `json:"before"`
	After     int         `json:"after"`
	Used      int         `json:"used"`
	Items     model.Items `json:"items"`
	RequestID string      `json:"requestId"`
	KitID     string      `json:"kitId"`
}

// AddConsumption records a surgery's consumption. Used is stored as entered
// even when it differs from Before minus After.
func (s *Service) AddConsumption(ctx context.Context, in ConsumptionInput) (model.ConsumptionRecord, error) {
	if err := required("surgery type", in.Type); err != nil {
		return model.ConsumptionRecord{}, err
	}
	if err := required("department", in.Dept); err != nil {
		return model.ConsumptionRecord{}, err
	}
	date, err := normalizeDate("date", in.Date)
	if err != nil {
		return model.ConsumptionRecord{}, err
	}
	if in.Before < 0 || in.After < 0 || in.Used < 0 {
		return model.ConsumptionRecord{}, fmt.Errorf("%w: counts must not be negative", model.ErrInvalid)
	}
	if in.Used != in.Before-in.After {
		slog.Warn("consumption used differs from before minus after",
			"id", in.ID, "before", in.Before, "after", in.After, "used", in.Used)
	}

	rec, err := collection.Create(ctx, s.store, model.CollectionConsumption, model.ConsumptionRecord{
		ID:        strings.TrimSpace(in.ID),
		Type:      strings.TrimSpace(in.Type),
		Dept:      strings.TrimSpace(in.Dept),
		Date:      date,
		Before:    model.Count(in.Before),
		After:     model.Count(in.After),
		Used:      model.Count(in.Used),
		Items:     in.Items,
		RequestID: in.RequestID,
		KitID:     in.KitID,
	})
	if err != nil {
		return model.ConsumptionRecord{}, fmt.Errorf("adding consumption record: %w", err)
	}
	return rec, nil
}

// ConsumptionReport builds the consumption report for q.
func (s *Service) ConsumptionReport(ctx context.Context, q report.Query) (report.ConsumptionReport, error) {
	records, err := collection.List[model.ConsumptionRecord](ctx, s.store, model.CollectionConsumption)
	if err != nil {
		return report.ConsumptionReport{}, fmt.Errorf("loading consumption records: %w", err)
	}
	return report.BuildConsumptionReport(records, q), nil
}
