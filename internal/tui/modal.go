package tui

import (
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/styles"
)

// Modal represents a confirmation dialog.
type Modal struct {
	title           string
	message         string
	confirmLabel    string
	destructive     bool
	visible         bool
	confirmSelected bool
}

// ModalOption customises a Modal.
type ModalOption func(*Modal)

// WithConfirmLabel replaces the "Confirm" button text.
func WithConfirmLabel(label string) ModalOption {
	return func(m *Modal) { m.confirmLabel = label }
}

// Destructive marks the confirm action as irreversible; its button is drawn
// in the error color.
func Destructive() ModalOption {
	return func(m *Modal) { m.destructive = true }
}

// NewModal creates a new modal with the given title and message. The confirm
// button starts selected.
func NewModal(title, message string, opts ...ModalOption) Modal {
	m := Modal{
		title:           title,
		message:         message,
		confirmLabel:    "Confirm",
		visible:         true,
		confirmSelected: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Overlay renders the modal centered over the background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	button := lipgloss.NewStyle().Padding(0, 2).Foreground(styles.ColorMuted)
	selected := button.Foreground(styles.ColorBackground).Background(styles.ColorPrimary).Bold(true)
	confirmSelected := selected
	if m.destructive {
		confirmSelected = selected.Background(styles.ColorError)
	}

	confirmBtn, cancelBtn := button.Render(m.confirmLabel), selected.Render("Cancel")
	if m.confirmSelected {
		confirmBtn, cancelBtn = confirmSelected.Render(m.confirmLabel), button.Render("Cancel")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  esc cancel"),
	)

	return centerOverlay(background, styles.ModalStyle.Render(content), width, height)
}

// centerOverlay composites fg over the middle of background.
func centerOverlay(background, fg string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	fgLayer := lipgloss.NewLayer(fg)

	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-lipgloss.Height(fg))/2, 0)
	fgLayer.X(x).Y(y).Z(1)

	return lipgloss.NewCompositor(bgLayer, fgLayer).Render()
}
