package optimistic

import (
	"context"
	"sync"
	"testing"
)

type deal struct {
	ID    string
	Stage string
	Value int
	Owner string
}

func dealID(d deal) string { return d.ID }

var (
	stageField = Field[deal, string]{
		Name: "stage",
		Get:  func(d deal) string { return d.Stage },
		Set:  func(d *deal, v string) { d.Stage = v },
	}
	valueField = Field[deal, int]{
		Name: "value",
		Get:  func(d deal) int { return d.Value },
		Set:  func(d *deal, v int) { d.Value = v },
	}
)

type failureCall struct {
	Key     string
	Message string
}

type recorder struct {
	mu       sync.Mutex
	failures []failureCall
	outcomes []Outcome
	changes  int
}

func (r *recorder) fail(key string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failureCall{Key: key, Message: msg})
}

func (r *recorder) Observe(_ string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) change() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes++
}

func (r *recorder) Failures() []failureCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]failureCall(nil), r.failures...)
}

func (r *recorder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

func newController(t testing.TB, policy Policy, items ...deal) (*Controller[string, deal], *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(dealID, items, Options[string]{
		Name:      "deals",
		OnFailure: rec.fail,
		OnChange:  rec.change,
		Observer:  rec,
		Policy:    policy,
	})
	return c, rec
}

// gate is a commit that blocks until the test releases it with a result.
type gate struct {
	calls   chan struct{}
	results chan error
}

func newGate() *gate {
	return &gate{
		calls:   make(chan struct{}, 16),
		results: make(chan error, 16),
	}
}

func (g *gate) commit(ctx context.Context, _ string, _ Patch[deal]) error {
	g.calls <- struct{}{}
	select {
	case err := <-g.results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) remove(ctx context.Context, _ []string) error {
	g.calls <- struct{}{}
	select {
	case err := <-g.results:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) release(err error) {
	g.results <- err
}
