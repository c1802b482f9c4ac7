package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/config"
	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/printer"
)

func newDemoApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	a, err := app.New(context.Background(), &cfg, app.Options{Demo: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testContext() (context.Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return printer.NewContext(context.Background(), printer.New(&out, &errOut)), &out, &errOut
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "nested/c.csv", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("name\n"), 0o644))
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single level",
			patterns: []string{filepath.Join(dir, "*.csv")},
			want:     []string{"a.csv", "b.csv"},
		},
		{
			name:     "recursive",
			patterns: []string{filepath.Join(dir, "**", "*.csv")},
			want:     []string{"a.csv", "b.csv", "nested/c.csv"},
		},
		{
			name:     "dedupes overlapping patterns",
			patterns: []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "*.csv")},
			want:     []string{"a.csv", "b.csv"},
		},
		{
			name:     "literal path kept even when missing",
			patterns: []string{filepath.Join(dir, "missing.csv")},
			want:     []string{"missing.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandGlobs(tt.patterns)
			require.NoError(t, err)

			rel := make([]string, len(got))
			for i, p := range got {
				r, err := filepath.Rel(dir, p)
				require.NoError(t, err)
				rel[i] = filepath.ToSlash(r)
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestExpandGlobs_bad_pattern(t *testing.T) {
	_, err := expandGlobs([]string{"[a-"})
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2026, time.March, 17, 15, 4, 0, 0, time.UTC)

	got, err := parseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseMonth("2025-11", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseMonth("11/2025", now)
	assert.ErrorContains(t, err, "YYYY-MM")
}

func TestActionNames(t *testing.T) {
	names := actionNames()
	assert.Contains(t, names, "pitch-deck")
	assert.Contains(t, names, "market-sizing")
	assert.NotContains(t, names, "_")
}

func TestTaskStatus(t *testing.T) {
	now := time.Date(2026, time.March, 17, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "done", taskStatus(crm.Task{Completed: true, DueAt: now.Add(-time.Hour)}, now))
	assert.Equal(t, "overdue", taskStatus(crm.Task{DueAt: now.Add(-time.Hour)}, now))
	assert.Equal(t, "open", taskStatus(crm.Task{DueAt: now.Add(time.Hour)}, now))
}

func TestCollectErrors(t *testing.T) {
	assert.Nil(t, collectErrors(nil))

	plain := collectErrors(errors.New("boom"))
	require.Len(t, plain, 1)
	assert.Equal(t, "boom", plain[0].Message)
	assert.Empty(t, plain[0].Field)

	fields := collectErrors(criterio.FieldErrors{
		{Field: "store.supabase.url", Err: errors.New("is required")},
		{Field: "tui.theme", Err: errors.New("unknown theme")},
	})
	require.Len(t, fields, 2)
	assert.Equal(t, "store.supabase.url", fields[0].Field)
	assert.Equal(t, "unknown theme", fields[1].Message)
}

func TestBatch_apply(t *testing.T) {
	a := newDemoApp(t)
	ctx, _, errOut := testContext()

	deals, err := a.CRM.Deals(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, deals)
	id := deals[0].ID

	b := newBatch(ctx, a, crm.CollectionDeals, crm.DealID, deals)
	b.apply(ctx, []string{id, "nope"}, crm.MoveDeal(crm.StageWon), a.CRM.CommitDeal)

	got, err := a.CRM.Deal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, crm.StageWon, got.Stage)

	err = b.report(ctx, "deal")
	require.Error(t, err)
	assert.Contains(t, errOut.String(), `deal "nope" not found`)
}

func TestBatch_apply_rejected_commit(t *testing.T) {
	a := newDemoApp(t)
	ctx, _, errOut := testContext()

	deals, err := a.CRM.Deals(ctx)
	require.NoError(t, err)
	id := deals[0].ID

	reject := func(context.Context, string, optimistic.Patch[crm.Deal]) error {
		return errors.New("permission denied")
	}

	b := newBatch(ctx, a, crm.CollectionDeals, crm.DealID, deals)
	b.apply(ctx, []string{id}, crm.MoveDeal(crm.StageLost), reject)

	got, err := a.CRM.Deal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, deals[0].Stage, got.Stage)

	require.Error(t, b.report(ctx, "deal"))
	assert.Contains(t, errOut.String(), "permission denied")
}

func TestBatch_remove(t *testing.T) {
	a := newDemoApp(t)
	ctx, _, _ := testContext()

	tasks, err := a.CRM.Tasks(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tasks), 2)

	b := newBatch(ctx, a, crm.CollectionTasks, crm.TaskID, tasks)
	b.remove(ctx, []string{tasks[0].ID, tasks[1].ID}, a.CRM.DeleteTasks)
	require.NoError(t, b.report(ctx, "task"))

	left, err := a.CRM.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, left, len(tasks)-2)
}
