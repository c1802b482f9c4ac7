// Package optimistic applies local changes to an in-memory collection before
// the remote write backing them has completed, and reverts them when the
// write fails.
//
// A change is visible the moment it is applied. The remote write (a
// CommitFunc) is invoked exactly once. On success the optimistic state becomes
// the confirmed state; on failure every field the patch touched is restored to
// its last confirmed value and the caller's FailureFunc is notified. Errors
// never escape the controller.
package optimistic

import "strings"

// Change is a single field assignment on T.
type Change[T any] interface {
	// Field names the field the change writes.
	Field() string
	// Apply writes the change into item.
	Apply(item *T)
	// Capture returns a change that restores this field to its value in item.
	Capture(item T) Change[T]
}

// Field is a typed accessor for one field of T. Fields are usually declared
// once per domain type as package-level variables.
type Field[T, V any] struct {
	Name string
	Get  func(T) V
	Set  func(*T, V)
}

// To returns a change that sets the field to v.
func (f Field[T, V]) To(v V) Change[T] {
	return assign[T, V]{field: f, value: v}
}

type assign[T, V any] struct {
	field Field[T, V]
	value V
}

func (a assign[T, V]) Field() string { return a.field.Name }

func (a assign[T, V]) Apply(item *T) { a.field.Set(item, a.value) }

func (a assign[T, V]) Capture(item T) Change[T] {
	return assign[T, V]{field: a.field, value: a.field.Get(item)}
}

// Patch is the set of changes applied to one item by a single mutation.
type Patch[T any] []Change[T]

// NewPatch builds a patch from changes.
func NewPatch[T any](changes ...Change[T]) Patch[T] {
	return Patch[T](changes)
}

// Fields returns the distinct field names the patch touches, in first-seen order.
func (p Patch[T]) Fields() []string {
	seen := make(map[string]bool, len(p))
	fields := make([]string, 0, len(p))
	for _, c := range p {
		if seen[c.Field()] {
			continue
		}
		seen[c.Field()] = true
		fields = append(fields, c.Field())
	}
	return fields
}

// Touches reports whether the patch writes the named field.
func (p Patch[T]) Touches(field string) bool {
	for _, c := range p {
		if c.Field() == field {
			return true
		}
	}
	return false
}

// ApplyTo returns a copy of item with every change applied in order.
func (p Patch[T]) ApplyTo(item T) T {
	for _, c := range p {
		c.Apply(&item)
	}
	return item
}

// String returns the touched field names, comma separated.
func (p Patch[T]) String() string {
	return strings.Join(p.Fields(), ",")
}
