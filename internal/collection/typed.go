package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// List fetches a collection and decodes each record as T. Records that fail
// to decode are logged and skipped. A failed fetch returns nil and the error.
func List[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	raw, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			slog.Warn("skipping malformed record", "collection", collection, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Get fetches one record and decodes it as T.
func Get[T any](ctx context.Context, s Store, collection, id string) (T, error) {
	var v T
	raw, err := s.Get(ctx, collection, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return v, nil
}

// Create stores record and decodes the stored copy, which carries the
// assigned id.
func Create[T any](ctx context.Context, s Store, collection string, record T) (T, error) {
	var v T
	raw, err := s.Create(ctx, collection, record)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding created %s record: %w", collection, err)
	}
	return v, nil
}

// Patch merges fields into a record and decodes the result.
func Patch[T any](ctx context.Context, s Store, collection, id string, fields map[string]any) (T, error) {
	var v T
	raw, err := s.Patch(ctx, collection, id, fields)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return v, nil
}
