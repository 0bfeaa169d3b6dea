package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Path joins collection and document segments, e.g. Path("invites", id, "guests").
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// AddDocument stores v under a new random id in collection.
func (s *Store) AddDocument(ctx context.Context, collection string, v any) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(data), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("add %s document: %w", collection, err)
	}
	s.notify(ctx, collection)
	return id, nil
}

// SetDocument writes v at collection/id. With merge, top-level fields of v
// are laid over the existing document instead of replacing it.
func (s *Store) SetDocument(ctx context.Context, collection, id string, v any, merge bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if merge {
		existing, err := s.GetDocument(ctx, collection, id)
		switch {
		case err == nil:
			if data, err = mergeFields(existing.Data, data); err != nil {
				return fmt.Errorf("merge %s/%s: %w", collection, id, err)
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	s.notify(ctx, collection)
	return nil
}

// UpdateDocument merges fields into an existing document.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	existing, err := s.GetDocument(ctx, collection, id)
	if err != nil {
		return err
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s fields: %w", collection, id, err)
	}
	data, err := mergeFields(existing.Data, patch)
	if err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), now, collection, id,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	s.notify(ctx, collection)
	return nil
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	d := &Document{Collection: collection, ID: id}
	var data, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	d.Data = json.RawMessage(data)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return d, nil
}

// ListDocuments returns a collection in insertion order.
func (s *Store) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = ? ORDER BY rowid`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d := Document{Collection: collection}
		var data, createdAt, updatedAt string
		if err := rows.Scan(&d.ID, &data, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		d.Data = json.RawMessage(data)
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func mergeFields(base, patch []byte) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, err
		}
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(patch, &over); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	for k, v := range over {
		fields[k] = v
	}
	return json.Marshal(fields)
}
