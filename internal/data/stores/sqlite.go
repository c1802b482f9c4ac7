package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/runway/internal/core/store"
	"github.com/colonyops/runway/internal/data/db"
)

// SQLiteStore persists one collection as JSON documents in the documents
// table.
type SQLiteStore[T store.Entity] struct {
	db         *db.DB
	collection string
	now        func() time.Time
}

// NewSQLiteStore creates a SQLite-backed store for collection.
func NewSQLiteStore[T store.Entity](database *db.DB, collection string) *SQLiteStore[T] {
	return &SQLiteStore[T]{db: database, collection: collection, now: time.Now}
}

// List returns the documents in creation order.
func (s *SQLiteStore[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT body FROM documents WHERE collection = ? ORDER BY created_at, id",
		s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.collection, err)
		}
		item, err := s.decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	return out, nil
}

func (s *SQLiteStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	var body string
	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?",
		s.collection, id,
	).Scan(&body)
	if IsNotFoundError(err) {
		return zero, store.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %q: %w", s.collection, id, err)
	}
	return s.decode(body)
}

// Upsert writes item, keeping the original creation time of an existing
// document.
func (s *SQLiteStore[T]) Upsert(ctx context.Context, item T) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", s.collection, item.EntityID(), err)
	}

	now := s.now().UnixNano()
	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, s.collection, item.EntityID(), string(body), now, now)
	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", s.collection, item.EntityID(), err)
	}
	return nil
}

func (s *SQLiteStore[T]) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		s.collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", s.collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", s.collection, id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the whole collection in one transaction.
func (s *SQLiteStore[T]) ReplaceAll(ctx context.Context, items []T) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", s.collection); err != nil {
			return fmt.Errorf("clear %s: %w", s.collection, err)
		}

		base := s.now().UnixNano()
		for i, item := range items {
			body, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encode %s %q: %w", s.collection, item.EntityID(), err)
			}
			ts := base + int64(i)
			_, err = tx.ExecContext(ctx,
				"INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				s.collection, item.EntityID(), string(body), ts, ts,
			)
			if err != nil {
				return fmt.Errorf("insert %s %q: %w", s.collection, item.EntityID(), err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore[T]) decode(body string) (T, error) {
	var item T
	if err := json.Unmarshal([]byte(body), &item); err != nil {
		return item, fmt.Errorf("decode %s: %w", s.collection, err)
	}
	return item, nil
}
