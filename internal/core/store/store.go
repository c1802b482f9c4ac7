// Package store defines the persistence boundary shared by every backend.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// Entity is a persisted record with a string identifier.
type Entity interface {
	EntityID() string
}

// Store persists one collection of entities.
type Store[T Entity] interface {
	// List returns every entity in a stable order.
	List(ctx context.Context) ([]T, error)
	// Get returns the entity with the given id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (T, error)
	// Upsert creates or replaces an entity.
	Upsert(ctx context.Context, item T) error
	// Delete removes an entity. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// Event reports that a collection changed outside this process.
type Event struct {
	Collection string
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Replacer is implemented by stores that can swap a whole collection at once.
type Replacer[T Entity] interface {
	ReplaceAll(ctx context.Context, items []T) error
}

// ReplaceAll makes items the entire contents of s. Stores that implement
// Replacer do it in one step; others get a delete pass followed by upserts.
func ReplaceAll[T Entity](ctx context.Context, s Store[T], items []T) error {
	if r, ok := s.(Replacer[T]); ok {
		return r.ReplaceAll(ctx, items)
	}

	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range existing {
		if err := s.Delete(ctx, item.EntityID()); err != nil && !IsNotFound(err) {
			return err
		}
	}
	for _, item := range items {
		if err := s.Upsert(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
