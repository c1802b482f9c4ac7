package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/styles"
)

const (
	headerHeight    = 2
	statusBarHeight = 1
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	mainView := m.renderMain()

	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	var content string
	switch {
	case m.state == stateConfirming:
		content = m.modal.Overlay(mainView, w, h)
	case m.state == stateShowingHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(mainView, w, h)
	case m.state == stateShowingNotifications && m.notificationModal != nil:
		content = m.notificationModal.Overlay(mainView, w, h)
	case m.state == stateDrafting && m.draft != nil:
		content = m.draft.Overlay(mainView, m.spinner.View(), w, h)
	default:
		content = mainView
	}

	// Toasts sit above everything else.
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(Views))
	for i, v := range Views {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == m.activeView {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}

	title := styles.TitleStyle.Render("runway")
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(title), 1)
	line := left + strings.Repeat(" ", gap) + title
	divider := styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 1)))
	return line + "\n" + divider
}

func (m Model) renderContent() string {
	height := max(m.height-headerHeight-statusBarHeight, 1)

	var body string
	switch {
	case m.loading && m.deals.Len() == 0:
		body = m.spinner.View() + " Loading…"
	case m.activeView == ViewBoard:
		body = m.boardView.View()
	case m.activeView == ViewTasks:
		body = m.tasksView.View()
	case m.activeView == ViewInsights:
		body = m.insightsView.View()
	case m.activeView == ViewMetrics:
		body = m.metricsView.View()
	}

	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(body)
}

func (m Model) renderStatusBar() string {
	help := m.help.ShortHelpView(m.keys.ShortHelp(m.activeView))

	badge := string(m.app.Backend())
	if m.app.Demo() {
		badge = "demo"
	}
	if n := m.deals.Len(); n > 0 {
		badge = fmt.Sprintf("%d deals • %s", n, badge)
	}
	right := styles.TextMutedStyle.Render(badge)

	gap := max(m.width-lipgloss.Width(help)-lipgloss.Width(right)-2, 1)
	return styles.StatusBarStyle.Render(help + strings.Repeat(" ", gap) + right)
}
