package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/colonyops/runway/internal/tui/components"
)

// KeyMap holds every binding the TUI responds to. Handlers match on
// key.Matches so the help bar and help dialog stay in sync with behavior.
type KeyMap struct {
	Quit          key.Binding
	NextView      key.Binding
	PrevView      key.Binding
	Help          key.Binding
	Notifications key.Binding
	Reload        key.Binding
	Dismiss       key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Board
	MovePrev key.Binding
	MoveNext key.Binding
	Email    key.Binding

	// Tasks
	Toggle key.Binding
	Mark   key.Binding
	Delete key.Binding

	// Insights
	DismissInsight key.Binding
	Generate       key.Binding

	// Draft panel
	Finish key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", keyCtrlC), key.WithHelp("q", "quit")),
		NextView:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevView:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Notifications: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notifications")),
		Reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dismiss:       key.NewBinding(key.WithKeys(keyEsc), key.WithHelp("esc", "dismiss")),

		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "column left")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "column right")),

		MovePrev: key.NewBinding(key.WithKeys("H", "shift+h"), key.WithHelp("H", "move deal back")),
		MoveNext: key.NewBinding(key.WithKeys("L", "shift+l"), key.WithHelp("L", "advance deal")),
		Email:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "draft email")),

		Toggle: key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "toggle done")),
		Mark:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "mark")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		DismissInsight: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Generate:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),

		Finish: key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "show all")),
	}
}

// ShortHelp returns the bindings shown in the status bar for view.
func (k KeyMap) ShortHelp(view ViewType) []key.Binding {
	switch view {
	case ViewBoard:
		return []key.Binding{k.Left, k.Down, k.MoveNext, k.MovePrev, k.Email, k.NextView, k.Help}
	case ViewTasks:
		return []key.Binding{k.Down, k.Toggle, k.Mark, k.Delete, k.NextView, k.Help}
	case ViewInsights:
		return []key.Binding{k.Down, k.DismissInsight, k.Generate, k.NextView, k.Help}
	default:
		return []key.Binding{k.Reload, k.NextView, k.Help, k.Quit}
	}
}

// HelpSections returns the help dialog contents.
func (k KeyMap) HelpSections() []components.HelpSection {
	return []components.HelpSection{
		{Title: "General", Bindings: []key.Binding{k.NextView, k.PrevView, k.Reload, k.Notifications, k.Dismiss, k.Help, k.Quit}},
		{Title: "Board", Bindings: []key.Binding{k.Left, k.Right, k.Up, k.Down, k.MovePrev, k.MoveNext, k.Email}},
		{Title: "Tasks", Bindings: []key.Binding{k.Toggle, k.Mark, k.Delete}},
		{Title: "Insights", Bindings: []key.Binding{k.DismissInsight, k.Generate}},
		{Title: "Drafts", Bindings: []key.Binding{k.Finish, k.Dismiss}},
	}
}
