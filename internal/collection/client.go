package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the collection store used when none is configured.
const DefaultBaseURL = "http://localhost:3001/api"

// Client talks to a remote collection store over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ Store = (*Client)(nil)

// NewClient returns a client for the store at baseURL. A zero timeout leaves
// requests unbounded apart from their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// List implements Store.
func (c *Client) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.path(collection), nil, &records); err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// Get implements Store.
func (c *Client) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var record json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.path(collection, id), nil, &record); err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return record, nil
}

// Create implements Store.
func (c *Client) Create(ctx context.Context, collection string, record any) (json.RawMessage, error) {
	var created json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.path(collection), record, &created); err != nil {
		return nil, fmt.Errorf("creating %s record: %w", collection, err)
	}
	return created, nil
}

// Patch implements Store.
func (c *Client) Patch(ctx context.Context, collection, id string, fields map[string]any) (json.RawMessage, error) {
	var patched json.RawMessage
	if err := c.do(ctx, http.MethodPatch, c.path(collection, id), fields, &patched); err != nil {
		return nil, fmt.Errorf("patching %s/%s: %w", collection, id, err)
	}
	return patched, nil
}

// Delete implements Store.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.path(collection, id), nil, nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Approve calls the store's approve path for a record.
func (c *Client) Approve(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var record json.RawMessage
	if err := c.do(ctx, http.MethodPatch, c.path(collection, id, "approve"), nil, &record); err != nil {
		return nil, fmt.Errorf("approving %s/%s: %w", collection, id, err)
	}
	return record, nil
}

// Reject calls the store's reject path for a record.
func (c *Client) Reject(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var record json.RawMessage
	if err := c.do(ctx, http.MethodPatch, c.path(collection, id, "reject"), nil, &record); err != nil {
		return nil, fmt.Errorf("rejecting %s/%s: %w", collection, id, err)
	}
	return record, nil
}

func (c *Client) path(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
