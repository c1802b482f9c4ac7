package tui

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/config"
	"github.com/colonyops/runway/internal/core/crm"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	a, err := app.New(context.Background(), &cfg, app.Options{Demo: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	m := New(context.Background(), a)
	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 48})
	m = update(t, m, m.loadDashboard()())
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	return tea.KeyPressMsg{Code: -1, Text: s}
}

// pressCmd sends a key and returns the command it produced.
func pressCmd(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(press(s))
	return next.(Model), cmd
}

func TestModel_dashboard_load(t *testing.T) {
	m := newTestModel(t)

	assert.False(t, m.loading)
	assert.Equal(t, 7, m.deals.Len())
	assert.Equal(t, 6, m.tasks.Len())
	assert.Equal(t, 3, m.insights.Len())
	assert.False(t, m.summary.Empty())
}

func TestModel_switch_views(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, ViewBoard, m.activeView)

	m = update(t, m, press("tab"))
	assert.Equal(t, ViewTasks, m.activeView)

	m = update(t, m, press("4"))
	assert.Equal(t, ViewMetrics, m.activeView)

	m = update(t, m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, ViewInsights, m.activeView)
}

func TestModel_move_deal_is_optimistic(t *testing.T) {
	m := newTestModel(t)

	sel, ok := m.boardView.Controller().Selected()
	require.True(t, ok)
	next, ok := sel.Stage.Next()
	require.True(t, ok)

	m, cmd := pressCmd(t, m, "L")
	require.NotNil(t, cmd)

	got, ok := m.deals.Get(sel.ID)
	require.True(t, ok)
	assert.Equal(t, next, got.Stage, "stage changes before the commit runs")
	assert.True(t, m.deals.Pending(sel.ID))

	followed, ok := m.boardView.Controller().Selected()
	require.True(t, ok)
	assert.Equal(t, sel.ID, followed.ID, "cursor follows the moved deal")

	m = update(t, m, cmd())
	assert.False(t, m.deals.Pending(sel.ID))

	d, err := m.app.LoadDashboard(context.Background())
	require.NoError(t, err)
	for _, deal := range d.Deals {
		if deal.ID == sel.ID {
			assert.Equal(t, next, deal.Stage)
		}
	}
}

func TestModel_failed_commit_rolls_back_and_toasts(t *testing.T) {
	m := newTestModel(t)

	sel, ok := m.boardView.Controller().Selected()
	require.True(t, ok)
	next, _ := sel.Stage.Next()

	mut, err := m.deals.Begin(sel.ID, crm.MoveDeal(next))
	require.NoError(t, err)

	next2, cmd := m.Update(committedMsg[crm.Deal]{mutation: mut, err: errors.New("network down")})
	m = next2.(Model)

	got, _ := m.deals.Get(sel.ID)
	assert.Equal(t, sel.Stage, got.Stage)
	assert.True(t, m.toastController.HasToasts())
	assert.NotNil(t, cmd, "toast tick starts")
	assert.True(t, m.toastController.Ticking())
}

func TestModel_toggle_task(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, press("2"))

	task, ok := m.tasksView.Controller().Selected()
	require.True(t, ok)

	m, cmd := pressCmd(t, m, "space")
	require.NotNil(t, cmd)

	got, _ := m.tasks.Get(task.ID)
	assert.Equal(t, !task.Completed, got.Completed)

	m = update(t, m, cmd())
	assert.False(t, m.tasks.Pending(task.ID))
}

func TestModel_delete_task_confirm(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, press("2"))

	task, ok := m.tasksView.Controller().Selected()
	require.True(t, ok)

	m = update(t, m, press("d"))
	require.Equal(t, stateConfirming, m.state)
	assert.Equal(t, []string{task.ID}, m.pendingDelete)

	m, cmd := pressCmd(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, 5, m.tasks.Len(), "task disappears before the delete commits")

	m = update(t, m, cmd())
	_, ok = m.tasks.Get(task.ID)
	assert.False(t, ok)
}

func TestModel_delete_task_cancel(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, press("2"))

	m = update(t, m, press("d"))
	m = update(t, m, press("esc"))

	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.pendingDelete)
	assert.Equal(t, 6, m.tasks.Len())
}

func TestModel_dismiss_insight(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, press("3"))

	in, ok := m.insightsView.Selected()
	require.True(t, ok)
	before := m.insightsView.Len()

	m, cmd := pressCmd(t, m, "x")
	require.NotNil(t, cmd)
	assert.Equal(t, before-1, m.insightsView.Len())

	m = update(t, m, cmd())
	got, _ := m.insights.Get(in.ID)
	assert.True(t, got.Dismissed)
}

func TestModel_draft_email(t *testing.T) {
	m := newTestModel(t)

	m, cmd := pressCmd(t, m, "e")
	require.NotNil(t, cmd)
	require.Equal(t, stateDrafting, m.state)
	require.NotNil(t, m.draft)
	assert.True(t, m.draft.Loading())

	msg := cmd()
	generated, ok := msg.(generatedMsg)
	require.True(t, ok)
	require.NoError(t, generated.err)
	assert.NotEmpty(t, generated.text)

	// A result from an older generation is ignored.
	m = update(t, m, generatedMsg{gen: generated.gen - 1, text: "stale"})
	assert.True(t, m.draft.Loading())

	m = update(t, m, generated)
	assert.False(t, m.draft.Loading())
	assert.True(t, m.draft.Typing())

	m = update(t, m, press("enter"))
	assert.False(t, m.draft.Typing())
	assert.Equal(t, generated.text, m.draft.Text())

	m = update(t, m, press("esc"))
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.draft)
}

func TestModel_draft_cancel_drops_late_ticks(t *testing.T) {
	m := newTestModel(t)
	m, _ = pressCmd(t, m, "e")
	gen := m.genSeq

	m = update(t, m, generatedMsg{gen: gen, text: "Hello there"})
	panel := m.draft
	tick := typewriterTickMsg{gen: panel.tw.Generation()}

	m = update(t, m, press("esc"))
	assert.Nil(t, m.draft)
	assert.Nil(t, panel.Tick(tick), "ticks from a cancelled reveal are stale")
}

func TestModel_notifications_modal(t *testing.T) {
	m := newTestModel(t)
	m.app.Notify.Errorf("boom")

	m = update(t, m, press("n"))
	require.Equal(t, stateShowingNotifications, m.state)
	require.NotNil(t, m.notificationModal)

	m = update(t, m, press("D"))
	assert.Empty(t, m.history())

	m = update(t, m, press("esc"))
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_help_dialog(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, press("?"))
	require.Equal(t, stateShowingHelp, m.state)
	assert.NotNil(t, m.helpDialog)

	m = update(t, m, press("esc"))
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_renderMain_shows_tabs(t *testing.T) {
	m := newTestModel(t)

	content := m.renderMain()
	for _, v := range Views {
		assert.Contains(t, content, v.Title())
	}
	assert.Contains(t, content, "demo")
}

func TestModel_quit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := pressCmd(t, m, "q")
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
