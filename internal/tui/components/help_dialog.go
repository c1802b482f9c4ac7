// Package components provides reusable TUI components.
package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/styles"
)

const (
	helpKeyWidth   = 10
	helpColumnGap  = 4
	helpChromeSize = 8 // modal border and padding
)

// HelpSection groups key bindings under a title.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpDialog lays the sections out in as many columns as fit the screen.
type HelpDialog struct {
	title    string
	sections []HelpSection
}

func NewHelpDialog(title string, sections []HelpSection) *HelpDialog {
	return &HelpDialog{title: title, sections: sections}
}

// View renders the dialog for a screen width columns wide.
func (h *HelpDialog) View(width int) string {
	blocks := make([]string, 0, len(h.sections))
	for _, s := range h.sections {
		if b := renderSection(s); b != "" {
			blocks = append(blocks, b)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(h.title),
		"",
		arrange(blocks, width-helpChromeSize),
		"",
		styles.ModalHelpStyle.Render("esc/? close"),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the dialog centered over background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View(width)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal).
		X(max((width-modalW)/2, 0)).
		Y(max((height-modalH)/2, 0)).
		Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}

// renderSection renders the enabled bindings of s, or "" when none are.
func renderSection(s HelpSection) string {
	var lines []string
	for _, b := range s.Bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		lines = append(lines, formatKeyDesc(help.Key, help.Desc))
	}
	if len(lines) == 0 {
		return ""
	}

	title := styles.TextPrimaryStyle.Bold(true).Render(s.Title)
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, lines...)...)
}

// arrange places blocks side by side, starting a new row when the next block
// would overflow width.
func arrange(blocks []string, width int) string {
	var (
		rows []string
		row  []string
		used int
	)
	gap := strings.Repeat(" ", helpColumnGap)

	flush := func() {
		if len(row) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, used = nil, 0
		}
	}

	for _, b := range blocks {
		w := lipgloss.Width(b)
		if len(row) > 0 && used+helpColumnGap+w > width {
			flush()
		}
		if len(row) > 0 {
			row = append(row, gap)
			used += helpColumnGap
		}
		row = append(row, b)
		used += w
	}
	flush()

	return strings.Join(rows, "\n\n")
}

func formatKeyDesc(k, desc string) string {
	padded := k + strings.Repeat(" ", max(helpKeyWidth-lipgloss.Width(k), 1))
	return styles.TextPrimaryStyle.Bold(true).Render(padded) + styles.TextForegroundStyle.Render(desc)
}
