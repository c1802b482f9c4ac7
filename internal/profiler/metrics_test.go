package profiler

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/optimistic"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Observe("deals", optimistic.OutcomeCommitted)
	m.Observe("deals", optimistic.OutcomeCommitted)
	m.Observe("deals", optimistic.OutcomeRolledBack)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Mutations.WithLabelValues("deals", string(optimistic.OutcomeCommitted))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("deals", string(optimistic.OutcomeRolledBack))), 0)
}

func TestMetrics_Observe_controller(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	type item struct{ ID, Stage string }
	stage := optimistic.Field[item, string]{
		Name: "stage",
		Get:  func(i item) string { return i.Stage },
		Set:  func(i *item, v string) { i.Stage = v },
	}

	c := optimistic.New(func(i item) string { return i.ID }, []item{{ID: "a"}}, optimistic.Options[string]{
		Name:     "deals",
		Observer: m,
	})
	c.Apply(context.Background(), "a", optimistic.NewPatch(stage.To("won")), func(context.Context, string, optimistic.Patch[item]) error {
		return errors.New("offline")
	})
	c.Apply(context.Background(), "zzz", optimistic.NewPatch(stage.To("won")), nil)
	c.Wait()

	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("deals", string(optimistic.OutcomeRolledBack))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues("deals", string(optimistic.OutcomePrecondition))), 0)
}

type stubGenerator struct{ err error }

func (s stubGenerator) Generate(_ context.Context, req genai.Request) (genai.Result, error) {
	if s.err != nil {
		return genai.Result{}, s.err
	}
	return genai.Result{Action: req.Action(), Content: "ok"}, nil
}

func TestMetrics_Instrument(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	req := genai.EmailRequest{Recipient: "a", Purpose: "b"}

	_, err := m.Instrument(stubGenerator{}).Generate(context.Background(), req)
	require.NoError(t, err)
	_, err = m.Instrument(stubGenerator{err: genai.ErrInvalidResponse}).Generate(context.Background(), req)
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Generations.WithLabelValues("email", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Generations.WithLabelValues("email", "invalid_response")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationSeconds))
}
