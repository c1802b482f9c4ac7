package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/config"
	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/data/stores"
)

func newDemoApp(t *testing.T) *App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	a, err := New(context.Background(), &cfg, Options{Demo: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_demo_uses_memory_and_seeds(t *testing.T) {
	a := newDemoApp(t)

	assert.Equal(t, stores.KindMemory, a.Backend())
	assert.True(t, a.Demo())

	d, err := a.LoadDashboard(context.Background())
	require.NoError(t, err)

	demo := Demo(time.Now())
	assert.Len(t, d.Customers, len(demo.Customers))
	assert.Len(t, d.Deals, len(demo.Deals))
	assert.Len(t, d.Tasks, len(demo.Tasks))
	assert.Len(t, d.Insights, len(demo.Insights))
	assert.False(t, d.Summary.Empty())
	assert.Len(t, d.Summary.History, 12)
}

func TestNew_demo_forces_offline_generator(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.GenAI.Backend = config.GenAIOpenAI

	a, err := New(context.Background(), &cfg, Options{Demo: true})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	res, err := a.Generator.Generate(context.Background(), genai.LeadScoreRequest{Name: "Ana"})
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, genai.ActionLeadScore, res.Action)
}

func TestNew_unknown_backend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Store.Backend = "carrier-pigeon"

	_, err := New(context.Background(), &cfg, Options{})
	require.Error(t, err)
}

func TestNew_file_backend_is_empty(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Store.Backend = config.BackendFile

	a, err := New(context.Background(), &cfg, Options{})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	d, err := a.LoadDashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.Deals)
	assert.True(t, d.Summary.Empty())
}

func TestSeed_replaces_existing(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()

	_, err := a.CRM.AddCustomer(ctx, crm.CustomerInput{Name: "Extra"})
	require.NoError(t, err)

	require.NoError(t, a.Seed(ctx))

	customers, err := a.CRM.Customers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, len(Demo(time.Now()).Customers))
}

func TestDemo_is_consistent(t *testing.T) {
	d := Demo(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	customers := make(map[string]bool)
	for _, c := range d.Customers {
		customers[c.ID] = true
	}
	deals := make(map[string]bool)
	for _, deal := range d.Deals {
		assert.True(t, customers[deal.CustomerID], "deal %s has unknown customer", deal.ID)
		deals[deal.ID] = true
	}
	for _, task := range d.Tasks {
		if task.DealID != "" {
			assert.True(t, deals[task.DealID], "task %s has unknown deal", task.ID)
		}
	}

	require.Len(t, d.Snapshots, 12)
	assert.Equal(t, "2025-03", d.Snapshots[0].ID)
	assert.Equal(t, "2026-02", d.Snapshots[11].ID)
	for i := 1; i < len(d.Snapshots); i++ {
		assert.Greater(t, d.Snapshots[i].MRR, d.Snapshots[i-1].MRR)
		assert.Less(t, d.Snapshots[i].Cash, d.Snapshots[i-1].Cash)
	}
}

func TestNewController_failure_publishes_notification(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()

	var got []notify.Notification
	a.Notify.Subscribe(func(n notify.Notification) { got = append(got, n) })

	deals, err := a.CRM.Deals(ctx)
	require.NoError(t, err)

	c := NewController(a, crm.CollectionDeals, crm.DealID, deals, nil)
	m, err := c.Begin("d-vandelay", crm.MoveDeal(crm.StageQualified))
	require.NoError(t, err)

	moved, _ := c.Get("d-vandelay")
	assert.Equal(t, crm.StageQualified, moved.Stage)

	c.Resolve(m, errors.New("connection reset"))

	rolled, _ := c.Get("d-vandelay")
	assert.Equal(t, crm.StageLead, rolled.Stage)
	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelError, got[0].Level)
	assert.Equal(t, crm.CollectionDeals, got[0].Source)
	assert.Contains(t, got[0].Message, "d-vandelay")
}

func TestNewController_commit_persists(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()

	tasks, err := a.CRM.Tasks(ctx)
	require.NoError(t, err)

	c := NewController(a, crm.CollectionTasks, crm.TaskID, tasks, nil)
	c.Apply(ctx, "t-acme-contract", crm.SetTaskCompleted(true), func(ctx context.Context, id string, p optimistic.Patch[crm.Task]) error {
		return a.CRM.CommitTask(ctx, id, p)
	})
	c.Wait()

	stored, err := a.CRM.Tasks(ctx)
	require.NoError(t, err)
	for _, task := range stored {
		if task.ID == "t-acme-contract" {
			assert.True(t, task.Completed)
		}
	}
}

func TestGenerateInsights_stores_results(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()

	before, err := a.CRM.Insights(ctx, true)
	require.NoError(t, err)

	added, err := a.GenerateInsights(ctx, "renewals")
	require.NoError(t, err)
	require.NotEmpty(t, added)
	assert.Contains(t, added[len(added)-1].Message, "renewals")

	after, err := a.CRM.Insights(ctx, true)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+len(added))
}

func TestInsightsRequest_summarises_pipeline(t *testing.T) {
	a := newDemoApp(t)

	req, err := a.InsightsRequest(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, req.Summary)
	assert.NoError(t, genai.Validate(req))
}

func TestEmailRequest(t *testing.T) {
	a := newDemoApp(t)
	ctx := context.Background()

	deal, err := a.CRM.Deal(ctx, "d-globex-renewal")
	require.NoError(t, err)

	req, err := a.EmailRequest(ctx, deal)
	require.NoError(t, err)
	assert.Equal(t, "Sam Patel", req.Recipient)
	assert.Equal(t, "Globex Logistics", req.Company)

	orphan := crm.Deal{ID: "x", Title: "Orphan", CustomerID: "missing", Stage: crm.StageLead}
	req, err = a.EmailRequest(ctx, orphan)
	require.NoError(t, err)
	assert.Equal(t, "there", req.Recipient)
}
