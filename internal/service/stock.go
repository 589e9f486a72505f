package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
)

// StockInput holds the editable fields of a stock item.
type StockInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
	MinLevel int    `json:"minLevel"`
}

func (in StockInput) validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if !model.ValidCategory(in.Category) {
		return fmt.Errorf("%w: category must be %s or %s", model.ErrInvalid, model.CategoryReusable, model.CategoryNonReusable)
	}
	if in.Quantity < 0 || in.MinLevel < 0 {
		return fmt.Errorf("%w: quantity and minimum level must not be negative", model.ErrInvalid)
	}
	return nil
}

// AddStock adds a stock item with its status derived from the quantity.
func (s *Service) AddStock(ctx context.Context, in StockInput) (model.StockItem, error) {
	if err := in.validate(); err != nil {
		return model.StockItem{}, err
	}
	item, err := collection.Create(ctx, s.store, model.CollectionStock, model.StockItem{
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
		Quantity: model.Count(in.Quantity),
		Location: strings.TrimSpace(in.Location),
		MinLevel: model.Count(in.MinLevel),
		Status:   model.StockStatus(in.Quantity, in.MinLevel),
	})
	if err != nil {
		return model.StockItem{}, fmt.Errorf("adding stock item: %w", err)
	}
	return item, nil
}

// EditStock replaces the editable fields of a stock item and recomputes
// its status.
func (s *Service) EditStock(ctx context.Context, id string, in StockInput) (model.StockItem, error) {
	if err := in.validate(); err != nil {
		return model.StockItem{}, err
	}
	item, err := collection.Patch[model.StockItem](ctx, s.store, model.CollectionStock, id, map[string]any{
		"name":     strings.TrimSpace(in.Name),
		"category": in.Category,
		"quantity": in.Quantity,
		"location": strings.TrimSpace(in.Location),
		"minLevel": in.MinLevel,
		"status":   model.StockStatus(in.Quantity, in.MinLevel),
	})
	if err != nil {
		return model.StockItem{}, fmt.Errorf("editing stock item %s: %w", id, err)
	}
	return item, nil
}
