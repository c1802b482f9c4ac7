package optimistic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fourDeals() []deal {
	return []deal{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
}

func TestController_Remove_success(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, rec := newController(t, PolicyConcurrent, fourDeals()...)
	g := newGate()

	c.Remove(context.Background(), []string{"b", "d"}, g.remove)
	<-g.calls

	assert.Equal(t, []string{"a", "c"}, keys(c.Items()))

	g.release(nil)
	c.Wait()

	assert.Equal(t, []string{"a", "c"}, keys(c.Items()))
	assert.Empty(t, rec.Failures())
}

func TestController_Remove_failure_restores_order(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, rec := newController(t, PolicyConcurrent, fourDeals()...)
	g := newGate()

	c.Remove(context.Background(), []string{"a", "c", "d"}, g.remove)
	<-g.calls
	assert.Equal(t, []string{"b"}, keys(c.Items()))

	g.release(errNetwork)
	c.Wait()

	assert.Equal(t, []string{"a", "b", "c", "d"}, keys(c.Items()))

	failures := rec.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, "a", failures[0].Key)
	assert.Equal(t, "c", failures[1].Key)
	assert.Equal(t, "d", failures[2].Key)
}

func TestController_BeginRemove_skips_unknown(t *testing.T) {
	c, rec := newController(t, PolicyConcurrent, fourDeals()...)

	r, err := c.BeginRemove([]string{"zzz", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, r.Keys())
	assert.Contains(t, rec.Outcomes(), OutcomePrecondition)

	_, err = c.BeginRemove([]string{"zzz"})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestController_BeginRemove_serialize_skips_pending(t *testing.T) {
	c, rec := newController(t, PolicySerialize, fourDeals()...)

	_, err := c.Begin("a", NewPatch(stageField.To("Won")))
	require.NoError(t, err)

	_, err = c.BeginRemove([]string{"a"})
	assert.ErrorIs(t, err, ErrPending)
	assert.Equal(t, 4, c.Len())
	require.Len(t, rec.Failures(), 1)
}

func TestController_Remove_then_pending_patch_fails(t *testing.T) {
	c, rec := newController(t, PolicyConcurrent, fourDeals()...)

	m, err := c.Begin("b", NewPatch(stageField.To("Won")))
	require.NoError(t, err)

	r, err := c.BeginRemove([]string{"b"})
	require.NoError(t, err)
	c.ResolveRemove(r, nil)

	assert.NotPanics(t, func() { c.Resolve(m, errNetwork) })
	_, ok := c.Get("b")
	assert.False(t, ok)
	assert.Len(t, rec.Failures(), 1)
}

func TestController_failed_patch_and_failed_remove(t *testing.T) {
	tests := []struct {
		name         string
		patchFirst   bool
		wantStage    string
		wantFailures int
	}{
		{name: "patch fails first", patchFirst: true, wantStage: "Lead", wantFailures: 2},
		{name: "remove fails first", patchFirst: false, wantStage: "Lead", wantFailures: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newController(t, PolicyConcurrent, deal{ID: "a"}, deal{ID: "b", Stage: "Lead"}, deal{ID: "c"})

			m, err := c.Begin("b", NewPatch(stageField.To("Won")))
			require.NoError(t, err)
			r, err := c.BeginRemove([]string{"b"})
			require.NoError(t, err)

			if tt.patchFirst {
				c.Resolve(m, errNetwork)
				c.ResolveRemove(r, errNetwork)
			} else {
				c.ResolveRemove(r, errNetwork)
				c.Resolve(m, errNetwork)
			}

			got, ok := c.Get("b")
			require.True(t, ok)
			assert.Equal(t, tt.wantStage, got.Stage)
			assert.Equal(t, []string{"a", "b", "c"}, keys(c.Items()))
			assert.False(t, c.Pending("b"))
			assert.Len(t, rec.Failures(), tt.wantFailures)
		})
	}
}

func TestController_patch_confirmed_while_removed(t *testing.T) {
	c, _ := newController(t, PolicyConcurrent, deal{ID: "b", Stage: "Lead"})

	older, err := c.Begin("b", NewPatch(stageField.To("Qualified")))
	require.NoError(t, err)
	newer, err := c.Begin("b", NewPatch(stageField.To("Won")))
	require.NoError(t, err)
	r, err := c.BeginRemove([]string{"b"})
	require.NoError(t, err)

	c.Resolve(newer, errNetwork)
	c.Resolve(older, nil)
	c.ResolveRemove(r, errNetwork)

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Qualified", got.Stage, "the confirmed value wins over the rejected one")
}

func TestController_Remove_success_discards_restored_fields(t *testing.T) {
	c, _ := newController(t, PolicyConcurrent, deal{ID: "b", Stage: "Lead"})

	m, err := c.Begin("b", NewPatch(stageField.To("Won")))
	require.NoError(t, err)
	r, err := c.BeginRemove([]string{"b"})
	require.NoError(t, err)

	c.Resolve(m, errNetwork)
	c.ResolveRemove(r, nil)

	assert.Zero(t, c.Len())
	assert.Empty(t, c.removing)
}

func keys(items []deal) []string {
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.ID
	}
	return out
}
