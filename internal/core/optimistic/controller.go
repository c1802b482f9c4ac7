package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/runway/internal/core/logging"
)

// Mutation is an applied but unresolved change to one item. It is returned by
// Begin and must be passed to Resolve exactly once.
type Mutation[K comparable, T any] struct {
	Key   K
	Patch Patch[T]
	seq   uint64
}

// Run invokes commit for the mutation. A panic inside commit is converted to
// an error.
func (m Mutation[K, T]) Run(ctx context.Context, commit CommitFunc[K, T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("commit panicked: %v", r)
		}
	}()
	return commit(ctx, m.Key, m.Patch)
}

// keyState tracks the unresolved mutations for a single key. Its presence in
// Controller.pending is the "has pending mutation" flag for the key.
type keyState[T any] struct {
	open   map[uint64]struct{}
	fields map[string]*fieldState[T]
}

type fieldState[T any] struct {
	// confirmed restores the last value known to be stored remotely.
	confirmed    Change[T]
	confirmedSeq uint64
	// writer is the newest unresolved mutation whose value is displayed, or
	// 0 when the field displays the confirmed value.
	writer uint64
	latest Change[T]
	refs   int
}

// Controller owns a collection and applies optimistic mutations to it. All
// methods are safe for concurrent use.
type Controller[K comparable, T any] struct {
	name      string
	policy    Policy
	onFailure FailureFunc[K]
	onChange  func()
	observer  Observer
	logger    zerolog.Logger

	mu      sync.Mutex
	items   *Collection[K, T]
	pending map[K]*keyState[T]
	// removing holds, per key in an unresolved Removal, the field values a
	// failed mutation restored while the item was out of the collection.
	removing map[K]map[string]Change[T]
	seq      uint64

	wg sync.WaitGroup
}

// New creates a controller over a copy of items.
func New[K comparable, T any](id func(T) K, items []T, opts Options[K]) *Controller[K, T] {
	logger := logging.ForCollection("optimistic", opts.Name)
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("collection", opts.Name).Logger()
	}

	return &Controller[K, T]{
		name:      opts.Name,
		policy:    opts.Policy,
		onFailure: opts.OnFailure,
		onChange:  opts.OnChange,
		observer:  opts.Observer,
		logger:    logger,
		items:     NewCollection(id, items),
		pending:   make(map[K]*keyState[T]),
		removing:  make(map[K]map[string]Change[T]),
	}
}

// Name returns the collection name.
func (c *Controller[K, T]) Name() string {
	return c.name
}

// Items returns a copy of the current, possibly optimistic, items.
func (c *Controller[K, T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Items()
}

// Get returns the current value for key.
func (c *Controller[K, T]) Get(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Get(key)
}

// Len returns the number of items.
func (c *Controller[K, T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Pending reports whether key has an unresolved mutation.
func (c *Controller[K, T]) Pending(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// Reset replaces the items with freshly loaded data. The loaded values become
// the rollback target of every pending field, and fields with an unresolved
// mutation keep their optimistic value on top of them.
func (c *Controller[K, T]) Reset(items []T) {
	c.mu.Lock()
	c.items.Reset(items)
	for key, ks := range c.pending {
		c.items.Update(key, func(item *T) {
			for _, fs := range ks.fields {
				fs.confirmed = fs.latest.Capture(*item)
			}
			for _, fs := range ks.fields {
				if fs.writer != 0 {
					fs.latest.Apply(item)
				}
			}
		})
	}
	c.mu.Unlock()

	c.changed()
}

// Wait blocks until every commit started by Apply or Remove has resolved.
func (c *Controller[K, T]) Wait() {
	c.wg.Wait()
}

// Apply merges patch into the item stored under key, then runs commit on a
// new goroutine and resolves the mutation with its result. Unknown keys are
// logged and ignored.
func (c *Controller[K, T]) Apply(ctx context.Context, key K, patch Patch[T], commit CommitFunc[K, T]) {
	m, err := c.Begin(key, patch)
	if err != nil {
		return
	}

	ctx = logging.WithCollection(ctx, c.name)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Resolve(m, m.Run(ctx, commit))
	}()
}

// Begin performs the synchronous half of Apply: the patch is merged into the
// item and the prior values of the touched fields are snapshotted. The
// returned mutation must be passed to Resolve once its commit has finished.
//
// Begin returns ErrUnknownKey when key is absent, and ErrPending under
// PolicySerialize when key already has a mutation in flight. The latter is
// also reported through the FailureFunc.
func (c *Controller[K, T]) Begin(key K, patch Patch[T]) (Mutation[K, T], error) {
	c.mu.Lock()

	item, ok := c.items.Get(key)
	if !ok {
		c.mu.Unlock()
		c.logger.Error().
			Interface("key", key).
			Str("fields", patch.String()).
			Msg("optimistic update for key not in collection")
		c.observe(OutcomePrecondition)
		return Mutation[K, T]{}, ErrUnknownKey
	}

	if _, busy := c.pending[key]; busy && c.policy == PolicySerialize {
		c.mu.Unlock()
		c.logger.Debug().Interface("key", key).Msg("rejected overlapping update")
		c.observe(OutcomeRejected)
		c.fail(key, ErrPending)
		return Mutation[K, T]{}, ErrPending
	}

	c.seq++
	m := Mutation[K, T]{Key: key, Patch: patch, seq: c.seq}

	ks := c.pending[key]
	if ks == nil {
		ks = &keyState[T]{
			open:   make(map[uint64]struct{}),
			fields: make(map[string]*fieldState[T]),
		}
		c.pending[key] = ks
	}
	ks.open[m.seq] = struct{}{}

	for _, ch := range patch {
		fs := ks.fields[ch.Field()]
		if fs == nil {
			fs = &fieldState[T]{confirmed: ch.Capture(item)}
			ks.fields[ch.Field()] = fs
		}
		fs.writer = m.seq
		fs.latest = ch
		fs.refs++
	}

	c.items.Update(key, func(item *T) {
		for _, ch := range patch {
			ch.Apply(item)
		}
	})
	c.mu.Unlock()

	c.logger.Debug().
		Interface("key", key).
		Str("fields", patch.String()).
		Uint64("seq", m.seq).
		Msg("applied optimistic update")
	c.changed()

	return m, nil
}

// Resolve performs the asynchronous half of Apply. A nil err confirms the
// mutation. A non-nil err reverts every field the mutation still owns to its
// last confirmed value and reports the failure exactly once.
func (c *Controller[K, T]) Resolve(m Mutation[K, T], err error) {
	c.mu.Lock()

	ks := c.pending[m.Key]
	if ks == nil {
		c.mu.Unlock()
		c.logger.Warn().Interface("key", m.Key).Uint64("seq", m.seq).Msg("resolve for unknown mutation")
		return
	}
	if _, ok := ks.open[m.seq]; !ok {
		c.mu.Unlock()
		c.logger.Warn().Interface("key", m.Key).Uint64("seq", m.seq).Msg("mutation already resolved")
		return
	}
	delete(ks.open, m.seq)

	changed := false
	for _, ch := range m.Patch {
		fs := ks.fields[ch.Field()]
		if fs == nil {
			continue
		}

		switch {
		case err == nil:
			if m.seq >= fs.confirmedSeq {
				fs.confirmed = ch
				fs.confirmedSeq = m.seq
			}
			if fs.writer == m.seq {
				fs.writer = 0
			} else if fs.writer == 0 {
				// A newer write already failed and fell back to an older
				// confirmed value; show what the remote now holds.
				changed = c.restore(m.Key, fs.confirmed) || changed
			}
		case fs.writer == m.seq:
			changed = c.restore(m.Key, fs.confirmed) || changed
			fs.writer = 0
		}

		fs.refs--
		if fs.refs <= 0 {
			delete(ks.fields, ch.Field())
		}
	}

	if len(ks.open) == 0 {
		delete(c.pending, m.Key)
	}
	c.mu.Unlock()

	if err == nil {
		c.logger.Debug().Interface("key", m.Key).Uint64("seq", m.seq).Msg("optimistic update committed")
		c.observe(OutcomeCommitted)
	} else {
		c.logger.Warn().
			Err(err).
			Interface("key", m.Key).
			Str("fields", m.Patch.String()).
			Uint64("seq", m.seq).
			Bool("reverted", changed).
			Msg("optimistic update rolled back")
		c.observe(OutcomeRolledBack)
		c.fail(m.Key, err)
	}

	if changed {
		c.changed()
	}
}

// restore applies ch to the item under key. When the item is out of the
// collection because of an unresolved Removal, ch is kept and applied if the
// removal is rolled back. Callers hold c.mu.
func (c *Controller[K, T]) restore(key K, ch Change[T]) bool {
	if c.items.Update(key, ch.Apply) {
		return true
	}
	if fields, ok := c.removing[key]; ok {
		fields[ch.Field()] = ch
	}
	return false
}

func (c *Controller[K, T]) fail(key K, err error) {
	if c.onFailure == nil {
		return
	}
	c.onFailure(key, failureMessage(err))
}

func (c *Controller[K, T]) observe(outcome Outcome) {
	if c.observer != nil {
		c.observer.Observe(c.name, outcome)
	}
}

func (c *Controller[K, T]) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	default:
		return err.Error()
	}
}
