package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/colonyops/runway/internal/core/store"
)

// Store implements store.Store over a PostgREST table whose primary key
// column is "id" and whose columns mirror the JSON encoding of T.
type Store[T store.Entity] struct {
	client *Client
	table  string
	order  string
}

// NewStore creates a table-backed store. order is a PostgREST order
// expression such as "created_at.asc"; empty means "id.asc".
func NewStore[T store.Entity](client *Client, table, order string) *Store[T] {
	if order == "" {
		order = "id.asc"
	}
	return &Store[T]{client: client, table: table, order: order}
}

func (s *Store[T]) path() string {
	return "rest/v1/" + s.table
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	err := s.client.do(ctx, request{
		method:     http.MethodGet,
		path:       s.path(),
		query:      url.Values{"select": {"*"}, "order": {s.order}},
		idempotent: true,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	return rows, nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	var rows []T
	err := s.client.do(ctx, request{
		method:     http.MethodGet,
		path:       s.path(),
		query:      url.Values{"select": {"*"}, "id": {"eq." + id}, "limit": {"1"}},
		idempotent: true,
	}, &rows)
	if err != nil {
		return zero, fmt.Errorf("get %s %q: %w", s.table, id, err)
	}
	if len(rows) == 0 {
		return zero, store.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store[T]) Upsert(ctx context.Context, item T) error {
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   s.path(),
		query:  url.Values{"on_conflict": {"id"}},
		header: http.Header{"Prefer": {"resolution=merge-duplicates,return=minimal"}},
		body:   []T{item},
	}, nil)
	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", s.table, item.EntityID(), err)
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) error {
	var deleted []map[string]any
	err := s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   s.path(),
		query:  url.Values{"id": {"eq." + id}},
		header: http.Header{"Prefer": {"return=representation"}},
	}, &deleted)
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", s.table, id, err)
	}
	if len(deleted) == 0 {
		return store.ErrNotFound
	}
	return nil
}
