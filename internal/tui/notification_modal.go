package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/core/styles"
)

const (
	notifyModalWidthPct  = 65
	notifyModalMinWidth  = 60
	notifyModalMaxHeight = 30
	notifyModalMargin    = 4
	notifyModalChrome    = 6 // title + divider + help + spacing
)

// NotificationModal shows the notification history grouped by day, newest
// first, in a scrollable viewport.
type NotificationModal struct {
	viewport viewport.Model
	errors   int
	warnings int
	now      func() time.Time
}

// NewNotificationModal creates a modal showing history, which must be newest
// first.
func NewNotificationModal(history []notify.Notification, width, height int) *NotificationModal {
	vp := viewport.New(
		viewport.WithWidth(calcNotificationModalWidth(width)-4),
		viewport.WithHeight(max(notificationModalHeight(height)-notifyModalChrome, 1)),
	)

	m := &NotificationModal{viewport: vp, now: time.Now}
	m.SetHistory(history)
	return m
}

// SetHistory replaces the displayed notifications.
func (m *NotificationModal) SetHistory(history []notify.Notification) {
	m.errors, m.warnings = 0, 0
	if len(history) == 0 {
		m.viewport.SetContent(styles.TextMutedStyle.Render("No notifications"))
		return
	}

	var (
		b       strings.Builder
		lastDay string
	)
	for _, n := range history {
		switch n.Level {
		case notify.LevelError:
			m.errors++
		case notify.LevelWarning:
			m.warnings++
		}

		if day := dayLabel(n.CreatedAt, m.now()); day != lastDay {
			if lastDay != "" {
				b.WriteByte('\n')
			}
			b.WriteString(styles.TextPrimaryStyle.Bold(true).Render(day))
			b.WriteByte('\n')
			lastDay = day
		}
		b.WriteString(formatNotification(n))
		b.WriteByte('\n')
	}
	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

// dayLabel names the local day of t relative to now.
func dayLabel(t, now time.Time) string {
	t, now = t.Local(), now.Local()
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.Local)

	switch time.Date(y1, m1, d1, 0, 0, 0, 0, time.Local) {
	case today:
		return "Today"
	case today.AddDate(0, 0, -1):
		return "Yesterday"
	}
	if y1 == y2 {
		return t.Format("Mon Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

func formatNotification(n notify.Notification) string {
	ts := styles.TextMutedStyle.Render(n.CreatedAt.Local().Format("15:04:05"))

	icon, style := styles.IconNotifyInfo, styles.TextPrimaryStyle
	switch n.Level {
	case notify.LevelError:
		icon, style = styles.IconNotifyError, styles.TextErrorStyle
	case notify.LevelWarning:
		icon, style = styles.IconNotifyWarning, styles.TextWarningStyle
	}

	return fmt.Sprintf("  %s %s %s", ts, icon, style.Render(n.String()))
}

func (m *NotificationModal) ScrollUp() {
	m.viewport.ScrollUp(1)
}

func (m *NotificationModal) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// title is the modal heading with error and warning counts.
func (m *NotificationModal) title() string {
	var counts []string
	if m.errors > 0 {
		counts = append(counts, styles.TextErrorStyle.Render(plural(m.errors, "error")))
	}
	if m.warnings > 0 {
		counts = append(counts, styles.TextWarningStyle.Render(plural(m.warnings, "warning")))
	}

	title := styles.ModalTitleStyle.Render("Notifications")
	if len(counts) > 0 {
		title += "  " + strings.Join(counts, styles.TextMutedStyle.Render(" · "))
	}
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		title += styles.TextMutedStyle.Render(fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100))
	}
	return title
}

// Overlay renders the notification modal centered over the background.
func (m *NotificationModal) Overlay(background string, width, height int) string {
	modalWidth := calcNotificationModalWidth(width)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.title(),
		styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1))),
		m.viewport.View(),
		styles.ModalHelpStyle.Render("[j/k] scroll  [D] clear all  [esc] close"),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(notificationModalHeight(height)).
		Render(content)

	return centerOverlay(background, modal, width, height)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func notificationModalHeight(termHeight int) int {
	return min(termHeight-notifyModalMargin, notifyModalMaxHeight)
}

func calcNotificationModalWidth(termWidth int) int {
	available := max(termWidth-notifyModalMargin, 1)
	target := termWidth * notifyModalWidthPct / 100
	return min(max(target, notifyModalMinWidth), available)
}
