package commands

import (
	"context"
	"sync/atomic"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/printer"
)

// batch runs CLI mutations through an optimistic controller so the CLI and
// the TUI share one write path. Rejections are printed to stderr as the
// controller reports them.
type batch[T any] struct {
	ctrl    *optimistic.Controller[string, T]
	missing []string
	failed  atomic.Int32
	detach  func()
}

func newBatch[T any](ctx context.Context, a *app.App, collection string, id func(T) string, items []T) *batch[T] {
	b := &batch[T]{ctrl: app.NewController(a, collection, id, items, nil)}

	p := printer.Ctx(ctx)
	b.detach = a.Notify.Subscribe(func(n notify.Notification) {
		if n.Source != collection || n.Level != notify.LevelError {
			return
		}
		b.failed.Add(1)
		p.Errorf("%s", n.Message)
	})
	return b
}

// known splits ids into those in the collection and those that are not,
// remembering the latter.
func (b *batch[T]) known(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := b.ctrl.Get(id); ok {
			out = append(out, id)
			continue
		}
		b.missing = append(b.missing, id)
	}
	return out
}

// apply patches every known id and waits for the commits.
func (b *batch[T]) apply(ctx context.Context, ids []string, patch optimistic.Patch[T], commit optimistic.CommitFunc[string, T]) {
	for _, id := range b.known(ids) {
		b.ctrl.Apply(ctx, id, patch, commit)
	}
	b.ctrl.Wait()
}

// remove deletes every known id in one commit and waits for it.
func (b *batch[T]) remove(ctx context.Context, ids []string, commit optimistic.RemoveFunc[string]) {
	keys := b.known(ids)
	if len(keys) == 0 {
		return
	}
	b.ctrl.Remove(ctx, keys, commit)
	b.ctrl.Wait()
}

// report prints unknown ids and returns an error when anything went wrong.
// It ends the batch: later rejections are no longer printed.
func (b *batch[T]) report(ctx context.Context, noun string) error {
	b.detach()

	p := printer.Ctx(ctx)
	for _, id := range b.missing {
		p.Errorf("%s %q not found", noun, id)
	}

	failures := len(b.missing) + int(b.failed.Load())
	if failures > 0 {
		return exitf("%d %s update(s) failed", failures, noun)
	}
	return nil
}
