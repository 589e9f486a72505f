// Package collection is the client side of the JSON collection store that
// holds every CSSD record.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// StatusError is returned for non-2xx store responses other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("store responded with status %d", e.Code)
	}
	return fmt.Sprintf("store responded with status %d: %s", e.Code, e.Body)
}

// Store is the set of primitive operations every collection supports.
// The store makes no uniqueness promise on record ids.
type Store interface {
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Create(ctx context.Context, collection string, record any) (json.RawMessage, error)
	Patch(ctx context.Context, collection, id string, fields map[string]any) (json.RawMessage, error)
	Delete(ctx context.Context, collection, id string) error
}
