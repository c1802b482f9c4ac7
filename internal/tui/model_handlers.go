package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/tui/components"
)

// Update handles incoming messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	// Data loading
	case dashboardLoadedMsg:
		return m.handleDashboardLoaded(msg)
	case watchStartedMsg:
		return m.handleWatchStarted(msg)
	case dataChangedMsg:
		log.Debug().Str("collection", msg.event.Collection).Msg("data changed on disk, reloading")
		return m, tea.Batch(m.loadDashboard(), listenForChanges(m.changes))

	// Commit results
	case committedMsg[crm.Deal]:
		m.deals.Resolve(msg.mutation, msg.err)
		return m.afterResolve()
	case committedMsg[crm.Task]:
		m.tasks.Resolve(msg.mutation, msg.err)
		return m.afterResolve()
	case committedMsg[crm.Insight]:
		m.insights.Resolve(msg.mutation, msg.err)
		return m.afterResolve()
	case removedMsg[crm.Task]:
		m.tasks.ResolveRemove(msg.removal, msg.err)
		return m.afterResolve()

	// Generation
	case generatedMsg:
		return m.handleGenerated(msg)
	case typewriterTickMsg:
		if m.draft == nil {
			return m, nil
		}
		return m, m.draft.Tick(msg)

	// Timers
	case toastTickMsg:
		return m.handleToastTick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleDashboardLoaded(msg dashboardLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		log.Error().Err(msg.err).Msg("failed to load dashboard")
		return m, m.notifyError("load failed: %v", msg.err)
	}

	d := msg.dashboard
	m.customers = d.Customers
	m.summary = d.Summary
	m.deals.Reset(d.Deals)
	m.tasks.Reset(d.Tasks)
	m.insights.Reset(d.Insights)
	m.syncViews()
	return m, nil
}

func (m Model) handleWatchStarted(msg watchStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Warn().Err(msg.err).Msg("file watcher unavailable")
		return m, nil
	}
	m.changes = msg.changes
	return m, listenForChanges(m.changes)
}

func (m Model) afterResolve() (tea.Model, tea.Cmd) {
	m.syncViews()
	return m, m.ensureToastTick()
}

func (m Model) handleToastTick() (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

func (m Model) handleGenerated(msg generatedMsg) (tea.Model, tea.Cmd) {
	if m.draft == nil || msg.gen != m.genSeq {
		return m, nil
	}
	m.genCancel = nil

	if msg.err != nil {
		log.Error().Err(msg.err).Msg("generation failed")
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.draft.Fail(msg.err)
		return m, nil
	}

	cmds := []tea.Cmd{m.draft.Start(msg.text)}
	if msg.reload {
		cmds = append(cmds, m.loadDashboard(), m.notifyInfo("insights updated"))
	}
	return m, tea.Batch(cmds...)
}

// --- Input ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		return m.quit()
	}

	switch m.state {
	case stateConfirming:
		return m.handleConfirmKey(msg)
	case stateShowingHelp:
		return m.handleHelpKey(msg)
	case stateShowingNotifications:
		return m.handleNotificationsKey(msg)
	case stateDrafting:
		return m.handleDraftKey(msg)
	}

	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextView):
		m.activeView = m.activeView.Next()
		return m, nil
	case key.Matches(msg, m.keys.PrevView):
		m.activeView = m.activeView.Prev()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.helpDialog = components.NewHelpDialog("Keyboard shortcuts", m.keys.HelpSections())
		m.state = stateShowingHelp
		return m, nil
	case key.Matches(msg, m.keys.Notifications):
		m.notificationModal = NewNotificationModal(m.history(), m.width, m.height)
		m.state = stateShowingNotifications
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.loadDashboard()
	case key.Matches(msg, m.keys.Dismiss):
		m.toastController.DismissAll()
		m.tasksView.Controller().ClearMarks()
		return m, nil
	}

	if v, ok := viewForKey(msg.String()); ok {
		m.activeView = v
		return m, nil
	}

	switch m.activeView {
	case ViewBoard:
		return m.handleBoardKey(msg)
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewInsights:
		return m.handleInsightsKey(msg)
	}
	return m, nil
}

// viewForKey maps the number keys to tabs.
func viewForKey(k string) (ViewType, bool) {
	for i, v := range Views {
		if k == fmt.Sprint(i+1) {
			return v, true
		}
	}
	return 0, false
}

func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	cursor := m.boardView.Controller()

	switch {
	case key.Matches(msg, m.keys.MovePrev):
		return m.moveSelectedDeal(crm.Stage.Prev)
	case key.Matches(msg, m.keys.MoveNext):
		return m.moveSelectedDeal(crm.Stage.Next)
	case key.Matches(msg, m.keys.Left):
		cursor.Left()
	case key.Matches(msg, m.keys.Right):
		cursor.Right()
	case key.Matches(msg, m.keys.Up):
		cursor.Up()
	case key.Matches(msg, m.keys.Down):
		cursor.Down()
	case key.Matches(msg, m.keys.Email):
		deal, ok := cursor.Selected()
		if !ok {
			return m, nil
		}
		return m.startDraft("Follow-up: "+deal.Title, func(ctx context.Context, gen uint64) tea.Cmd {
			return draftEmail(ctx, m.app, gen, deal)
		})
	}
	return m, nil
}

func (m Model) moveSelectedDeal(step func(crm.Stage) (crm.Stage, bool)) (tea.Model, tea.Cmd) {
	deal, ok := m.boardView.Controller().Selected()
	if !ok {
		return m, nil
	}
	stage, ok := step(deal.Stage)
	if !ok {
		return m, nil
	}

	mut, err := m.deals.Begin(deal.ID, crm.MoveDeal(stage))
	if err != nil {
		return m, m.ensureToastTick()
	}
	m.syncViews()
	m.boardView.Controller().Follow(deal.ID)

	return m, commitCmd(m.ctx, mut, m.app.CRM.CommitDeal)
}

func (m Model) handleTasksKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	list := m.tasksView.Controller()

	switch {
	case key.Matches(msg, m.keys.Up):
		list.Up()
	case key.Matches(msg, m.keys.Down):
		list.Down()
	case key.Matches(msg, m.keys.Mark):
		list.ToggleMark()
	case key.Matches(msg, m.keys.Toggle):
		task, ok := list.Selected()
		if !ok {
			return m, nil
		}
		mut, err := m.tasks.Begin(task.ID, crm.SetTaskCompleted(!task.Completed))
		if err != nil {
			return m, m.ensureToastTick()
		}
		m.syncViews()
		return m, commitCmd(m.ctx, mut, m.app.CRM.CommitTask)
	case key.Matches(msg, m.keys.Delete):
		ids := list.Targets()
		if len(ids) == 0 {
			return m, nil
		}
		m.pendingDelete = ids
		m.modal = NewModal("Delete tasks", deletePrompt(len(ids)), WithConfirmLabel("Delete"), Destructive())
		m.state = stateConfirming
	}
	return m, nil
}

func deletePrompt(n int) string {
	if n == 1 {
		return "Delete the selected task?"
	}
	return fmt.Sprintf("Delete %d marked tasks?", n)
}

func (m Model) deleteTasks(ids []string) (tea.Model, tea.Cmd) {
	r, err := m.tasks.BeginRemove(ids)
	if err != nil {
		return m, m.ensureToastTick()
	}
	m.tasksView.Controller().ClearMarks()
	m.syncViews()
	return m, removeCmd(m.ctx, r, m.app.CRM.DeleteTasks)
}

func (m Model) handleInsightsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.insightsView.Up()
	case key.Matches(msg, m.keys.Down):
		m.insightsView.Down()
	case key.Matches(msg, m.keys.DismissInsight):
		in, ok := m.insightsView.Selected()
		if !ok {
			return m, nil
		}
		mut, err := m.insights.Begin(in.ID, crm.DismissInsight())
		if err != nil {
			return m, m.ensureToastTick()
		}
		m.syncViews()
		return m, commitCmd(m.ctx, mut, m.app.CRM.CommitInsight)
	case key.Matches(msg, m.keys.Generate):
		return m.startDraft("New insights", func(ctx context.Context, gen uint64) tea.Cmd {
			return generateInsights(ctx, m.app, gen)
		})
	}
	return m, nil
}

// startDraft opens the draft panel and runs the generation command built by
// run. Only the newest generation's result is shown.
func (m Model) startDraft(title string, run func(ctx context.Context, gen uint64) tea.Cmd) (tea.Model, tea.Cmd) {
	if m.genCancel != nil {
		m.genCancel()
	}
	m.genSeq++

	ctx, cancel := context.WithCancel(m.ctx)
	m.genCancel = cancel
	m.draft = NewDraftPanel(title, m.app.Config.TUI.TypewriterDelay, m.width, m.height)
	m.state = stateDrafting
	return m, run(ctx, m.genSeq)
}

func (m Model) handleDraftKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Quit):
		if m.genCancel != nil {
			m.genCancel()
			m.genCancel = nil
		}
		m.draft.Cancel()
		m.draft = nil
		m.state = stateNormal
	case key.Matches(msg, m.keys.Finish):
		m.draft.Finish()
	case key.Matches(msg, m.keys.Up):
		m.draft.ScrollUp()
	case key.Matches(msg, m.keys.Down):
		m.draft.ScrollDown()
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		ids := m.pendingDelete
		confirmed := m.modal.ConfirmSelected()
		m.pendingDelete = nil
		m.state = stateNormal
		if confirmed {
			return m.deleteTasks(ids)
		}
	case keyEsc, "q":
		m.pendingDelete = nil
		m.state = stateNormal
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc, "?", "q":
		m.helpDialog = nil
		m.state = stateNormal
	}
	return m, nil
}

func (m Model) handleNotificationsKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc, "n", "q":
		m.notificationModal = nil
		m.state = stateNormal
	case "j", "down":
		m.notificationModal.ScrollDown()
	case "k", "up":
		m.notificationModal.ScrollUp()
	case "D":
		if err := m.app.Notify.Clear(); err != nil {
			return m, m.notifyError("clear notifications: %v", err)
		}
		m.sessionLog.clear()
		m.notificationModal.SetHistory(nil)
	}
	return m, nil
}
