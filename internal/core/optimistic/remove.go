package optimistic

import (
	"context"
	"fmt"

	"github.com/colonyops/runway/internal/core/logging"
)

type removed[K comparable, T any] struct {
	key   K
	item  T
	index int
}

// Removal is an applied but unresolved bulk delete.
type Removal[K comparable, T any] struct {
	entries []removed[K, T]
}

// Keys returns the keys that were removed, in removal order.
func (r Removal[K, T]) Keys() []K {
	keys := make([]K, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of removed items.
func (r Removal[K, T]) Len() int {
	return len(r.entries)
}

// Run invokes commit with the removed keys. A panic inside commit is
// converted to an error.
func (r Removal[K, T]) Run(ctx context.Context, commit RemoveFunc[K]) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("remove panicked: %v", rec)
		}
	}()
	return commit(ctx, r.Keys())
}

// Remove deletes keys from the collection immediately, then runs commit on a
// new goroutine. If commit fails the items are put back where they were.
func (c *Controller[K, T]) Remove(ctx context.Context, keys []K, commit RemoveFunc[K]) {
	r, err := c.BeginRemove(keys)
	if err != nil {
		return
	}

	ctx = logging.WithCollection(ctx, c.name)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.ResolveRemove(r, r.Run(ctx, commit))
	}()
}

// BeginRemove performs the synchronous half of Remove. Keys that are absent
// are logged and skipped; under PolicySerialize keys with a mutation in
// flight are skipped and reported. ErrUnknownKey is returned when nothing was
// removed.
func (c *Controller[K, T]) BeginRemove(keys []K) (Removal[K, T], error) {
	var (
		r       Removal[K, T]
		missing []K
		busy    []K
	)

	c.mu.Lock()
	for _, key := range keys {
		if _, pending := c.pending[key]; pending && c.policy == PolicySerialize {
			busy = append(busy, key)
			continue
		}
		item, index, ok := c.items.Remove(key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		r.entries = append(r.entries, removed[K, T]{key: key, item: item, index: index})
		c.removing[key] = make(map[string]Change[T])
	}
	c.mu.Unlock()

	for _, key := range missing {
		c.logger.Error().Interface("key", key).Msg("optimistic remove for key not in collection")
		c.observe(OutcomePrecondition)
	}
	for _, key := range busy {
		c.observe(OutcomeRejected)
		c.fail(key, ErrPending)
	}

	if r.Len() == 0 {
		if len(busy) > 0 {
			return r, ErrPending
		}
		return r, ErrUnknownKey
	}

	c.logger.Debug().Int("count", r.Len()).Msg("applied optimistic remove")
	c.changed()
	return r, nil
}

// ResolveRemove performs the asynchronous half of Remove. On failure the
// removed items are reinserted at their original positions and the failure is
// reported once per key.
func (c *Controller[K, T]) ResolveRemove(r Removal[K, T], err error) {
	c.mu.Lock()
	restored := make([]map[string]Change[T], len(r.entries))
	for i, e := range r.entries {
		restored[i] = c.removing[e.key]
		delete(c.removing, e.key)
	}
	if err == nil {
		c.mu.Unlock()
		c.logger.Debug().Int("count", r.Len()).Msg("optimistic remove committed")
		c.observe(OutcomeCommitted)
		return
	}

	// Each index was recorded after the removals before it, so undoing them
	// in reverse restores the original order.
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		for _, ch := range restored[i] {
			ch.Apply(&e.item)
		}
		c.items.Insert(e.index, e.item)
	}
	c.mu.Unlock()

	c.logger.Warn().Err(err).Int("count", r.Len()).Msg("optimistic remove rolled back")
	c.observe(OutcomeRolledBack)
	for _, e := range r.entries {
		c.fail(e.key, err)
	}
	c.changed()
}
