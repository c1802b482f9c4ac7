package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(Notification)

// Bus dispatches notifications to subscribers and persists them to a Store
// when one is configured. Subscribers run on the publishing goroutine, in
// subscription order.
type Bus struct {
	store Store

	mu     sync.Mutex
	nextID int
	subs   map[int]Subscriber
	order  []int
}

// NewBus creates a notification bus backed by store. A nil store still
// dispatches but keeps no history.
func NewBus(store Store) *Bus {
	return &Bus{store: store, subs: make(map[int]Subscriber)}
}

// Subscribe registers fn for every later Publish and returns a function that
// removes it again.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
		})
	}
}

func (b *Bus) snapshot() []Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Subscriber, 0, len(b.subs))
	live := b.order[:0]
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			out = append(out, fn)
			live = append(live, id)
		}
	}
	b.order = live
	return out
}

// Publish persists n, which gives it an ID, and then hands it to every
// subscriber. A failed save is logged and does not stop delivery.
func (b *Bus) Publish(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if b.store != nil {
		id, err := b.store.Save(context.Background(), n)
		if err != nil {
			log.Error().Err(err).Str("source", n.Source).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	for _, fn := range b.snapshot() {
		fn(n)
	}
}

func (b *Bus) publishf(level Level, format string, args []any) {
	b.Publish(Notification{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(format string, args ...any) { b.publishf(LevelError, format, args) }

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(format string, args ...any) { b.publishf(LevelWarning, format, args) }

// Infof publishes an info-level notification.
func (b *Bus) Infof(format string, args ...any) { b.publishf(LevelInfo, format, args) }

// Failures returns a failure callback for an optimistic controller over
// source. Each rejected update becomes one error notification.
func (b *Bus) Failures(source string) func(key string, message string) {
	return func(key, message string) {
		b.Publish(Notification{
			Level:   LevelError,
			Source:  source,
			Message: fmt.Sprintf("could not update %s: %s", key, message),
		})
	}
}

// History returns the persisted notifications, newest first. It is nil
// without a store.
func (b *Bus) History() ([]Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(context.Background())
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear() error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(context.Background())
}
