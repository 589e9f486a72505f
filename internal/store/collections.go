package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/cssd/internal/collection"
)

// Collections serves the collection store straight from the local database.
type Collections struct {
	DB *sql.DB
}

var _ collection.Store = (*Collections)(nil)

// NewCollections returns a collection.Store backed by db.
func NewCollections(db *sql.DB) *Collections {
	return &Collections{DB: db}
}

// List implements collection.Store.
func (c *Collections) List(ctx context.Context, name string) ([]json.RawMessage, error) {
	return ListRecords(ctx, c.DB, name)
}

// Get implements collection.Store.
func (c *Collections) Get(ctx context.Context, name, id string) (json.RawMessage, error) {
	record, err := GetRecord(ctx, c.DB, name, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
	}
	return record, nil
}

// Create implements collection.Store.
func (c *Collections) Create(ctx context.Context, name string, record any) (json.RawMessage, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return CreateRecord(ctx, c.DB, name, data)
}

// Patch implements collection.Store.
func (c *Collections) Patch(ctx context.Context, name, id string, fields map[string]any) (json.RawMessage, error) {
	record, err := PatchRecord(ctx, c.DB, name, id, fields)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
	}
	return record, nil
}

// Delete implements collection.Store.
func (c *Collections) Delete(ctx context.Context, name, id string) error {
	deleted, err := DeleteRecord(ctx, c.DB, name, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%s/%s: %w", name, id, collection.ErrNotFound)
	}
	return nil
}
