package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/erazemk/cssd/internal/model"
)

// ListRecords returns every record of a collection in insertion order.
func ListRecords(ctx context.Context, db *sql.DB, collection string) ([]json.RawMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT data FROM records WHERE collection = ? ORDER BY seq`, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, json.RawMessage(data))
	}
	return records, rows.Err()
}

// GetRecord returns the first record with the given id, or nil if none exists.
func GetRecord(ctx context.Context, db *sql.DB, collection, id string) (json.RawMessage, error) {
	var data string
	err := db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ? ORDER BY seq LIMIT 1`,
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return json.RawMessage(data), nil
}

// CreateRecord stores a new record. A record without an id gets the next
// free id for its collection, e.g. REQ007. Records carrying an id are stored
// as given, even when the id is already taken.
func CreateRecord(ctx context.Context, db *sql.DB, collection string, data []byte) (json.RawMessage, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := idString(fields["id"])
	if id == "" {
		id, err = nextID(ctx, tx, collection)
		if err != nil {
			return nil, err
		}
	}
	fields["id"] = id

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, string(encoded),
	); err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}
	return json.RawMessage(encoded), nil
}

// PatchRecord merges fields into every record sharing the id. The id itself
// is never changed. It returns the first merged record, or nil if no record
// has the id.
func PatchRecord(ctx context.Context, db *sql.DB, collection, id string, fields map[string]any) (json.RawMessage, error) {
	return rewriteRecords(ctx, db, collection, id, func(current map[string]any) {
		for k, v := range fields {
			if k == "id" {
				continue
			}
			current[k] = v
		}
	})
}

// ReplaceRecord replaces the body of every record sharing the id. It returns
// the stored record, or nil if no record has the id.
func ReplaceRecord(ctx context.Context, db *sql.DB, collection, id string, data []byte) (json.RawMessage, error) {
	replacement, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("replacing record: %w", err)
	}
	return rewriteRecords(ctx, db, collection, id, func(current map[string]any) {
		clear(current)
		for k, v := range replacement {
			current[k] = v
		}
	})
}

// DeleteRecord removes every record with the id. It reports whether anything
// was deleted.
func DeleteRecord(ctx context.Context, db *sql.DB, collection, id string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id,
	)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted records: %w", err)
	}
	return n > 0, nil
}

// SetStatus sets the status field of every record with the id.
func SetStatus(ctx context.Context, db *sql.DB, collection, id, status string) (json.RawMessage, error) {
	return PatchRecord(ctx, db, collection, id, map[string]any{"status": status})
}

func rewriteRecords(ctx context.Context, db *sql.DB, collection, id string, apply func(map[string]any)) (json.RawMessage, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	type row struct {
		seq  int64
		data string
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT seq, data FROM records WHERE collection = ? AND id = ? ORDER BY seq`,
		collection, id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}
	var existing []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.seq, &r.data); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		existing = append(existing, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	var first json.RawMessage
	for _, r := range existing {
		current, err := decodeObject([]byte(r.data))
		if err != nil {
			current = map[string]any{}
		}
		apply(current)
		current["id"] = id

		encoded, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("encoding record: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE seq = ?`,
			string(encoded), r.seq,
		); err != nil {
			return nil, fmt.Errorf("updating record: %w", err)
		}
		if first == nil {
			first = encoded
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}
	return first, nil
}

// nextID returns the collection prefix followed by one more than the highest
// numeric suffix already in use under that prefix.
func nextID(ctx context.Context, tx *sql.Tx, collection string) (string, error) {
	prefix := model.IDPrefix(collection)

	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT id FROM records WHERE collection = ?`, collection,
	)
	if err != nil {
		return "", fmt.Errorf("loading record ids: %w", err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning record id: %w", err)
		}
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("loading record ids: %w", err)
	}

	return fmt.Sprintf("%s%03d", prefix, highest+1), nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", model.ErrInvalid)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", model.ErrInvalid)
	}
	return fields, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	default:
		return fmt.Sprint(id)
	}
}
