// Package tui implements the Bubble Tea TUI for runway.
package tui

import (
	"context"
	"sync"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/runway/internal/app"
	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/optimistic"
	"github.com/colonyops/runway/internal/core/store"
	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/tui/components"
	"github.com/colonyops/runway/internal/tui/views/board"
	"github.com/colonyops/runway/internal/tui/views/insights"
	metricsview "github.com/colonyops/runway/internal/tui/views/metrics"
	"github.com/colonyops/runway/internal/tui/views/tasks"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateConfirming
	stateShowingHelp
	stateShowingNotifications
	stateDrafting
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx    context.Context
	app    *app.App
	keys   KeyMap
	state  UIState
	width  int
	height int

	activeView ViewType
	loading    bool
	quitting   bool
	spinner    spinner.Model
	help       help.Model

	// Optimistic collections. Views read from these so pending updates show
	// immediately.
	deals     *optimistic.Controller[string, crm.Deal]
	tasks     *optimistic.Controller[string, crm.Task]
	insights  *optimistic.Controller[string, crm.Insight]
	customers []crm.Customer
	summary   metrics.Summary

	boardView    *board.View
	tasksView    *tasks.View
	insightsView *insights.View
	metricsView  *metricsview.View

	// Confirm modal
	modal         Modal
	pendingDelete []string

	helpDialog        *components.HelpDialog
	notificationModal *NotificationModal

	// Generation
	draft     *DraftPanel
	genSeq    uint64
	genCancel context.CancelFunc

	// Notifications
	toastController *ToastController
	toastView       *ToastView
	sessionLog      *notificationLog

	changes <-chan store.Event
}

// notificationLog keeps this session's notifications for backends that do
// not persist them.
type notificationLog struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (l *notificationLog) add(n notify.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
}

// newestFirst returns a copy of the log, newest first.
func (l *notificationLog) newestFirst() []notify.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]notify.Notification, len(l.items))
	for i, n := range l.items {
		out[len(l.items)-1-i] = n
	}
	return out
}

func (l *notificationLog) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// New creates the TUI model. Data is loaded by Init.
func New(ctx context.Context, a *app.App) Model {
	cfg := a.Config
	if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
		styles.SetTheme(palette)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	h := help.New()
	h.ShortSeparator = " • "
	h.Styles.ShortKey = styles.TextPrimaryStyle
	h.Styles.ShortDesc = styles.TextMutedStyle
	h.Styles.ShortSeparator = styles.TextMutedStyle

	toastCtrl := NewToastController(cfg.TUI.ToastTTL, cfg.TUI.ToastMax)
	sessionLog := &notificationLog{}

	// Failures are published from the update loop (Begin and Resolve run
	// there), so pushing straight into the toast controller is safe.
	a.Notify.Subscribe(func(n notify.Notification) {
		toastCtrl.Push(n)
		sessionLog.add(n)
	})

	m := Model{
		ctx:             ctx,
		app:             a,
		keys:            DefaultKeyMap(),
		loading:         true,
		spinner:         s,
		help:            h,
		deals:           app.NewController(a, crm.CollectionDeals, crm.DealID, nil, nil),
		tasks:           app.NewController(a, crm.CollectionTasks, crm.TaskID, nil, nil),
		insights:        app.NewController(a, crm.CollectionInsights, crm.InsightID, nil, nil),
		boardView:       board.New(),
		tasksView:       tasks.New(),
		insightsView:    insights.New(),
		metricsView:     metricsview.New(),
		toastController: toastCtrl,
		toastView:       NewToastView(toastCtrl),
		sessionLog:      sessionLog,
	}

	m.boardView.SetPending(m.deals.Pending)
	m.tasksView.SetPending(m.tasks.Pending)
	m.insightsView.SetPending(m.insights.Pending)
	return m
}

// Init loads the dashboard and starts the background timers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadDashboard(), m.startWatch(), m.spinner.Tick)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.genCancel != nil {
		m.genCancel()
	}
	return m, tea.Quit
}

// syncViews pushes the current collections into the views.
func (m *Model) syncViews() {
	deals := m.deals.Items()
	m.boardView.SetCustomers(m.customers)
	m.boardView.SetDeals(deals)
	m.tasksView.SetDeals(deals)
	m.tasksView.SetTasks(m.tasks.Items())
	m.insightsView.SetInsights(m.insights.Items())
	m.metricsView.SetSummary(m.summary)
}

// layout resizes the views to the space left by the header and status bar.
func (m *Model) layout() {
	contentHeight := max(m.height-headerHeight-statusBarHeight, 1)
	m.boardView.SetSize(m.width, contentHeight)
	m.tasksView.SetSize(m.width, contentHeight)
	m.insightsView.SetSize(m.width, contentHeight)
	m.metricsView.SetSize(m.width, contentHeight)
}

// history returns persisted notifications when the backend keeps them,
// otherwise this session's.
func (m Model) history() []notify.Notification {
	persisted, err := m.app.Notify.History()
	if err == nil && persisted != nil {
		return persisted
	}
	return m.sessionLog.newestFirst()
}

// ensureToastTick starts the toast countdown if toasts are showing and the
// timer is not already running.
func (m *Model) ensureToastTick() tea.Cmd {
	if !m.toastController.HasToasts() || m.toastController.Ticking() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}

// notifyError publishes an error-level notification and returns a command
// to start the toast tick timer if needed.
func (m *Model) notifyError(format string, args ...any) tea.Cmd {
	m.app.Notify.Errorf(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifyInfo(format string, args ...any) tea.Cmd {
	m.app.Notify.Infof(format, args...)
	return m.ensureToastTick()
}
