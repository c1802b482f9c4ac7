package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/styles"
)

// View renders the task list.
type View struct {
	ctrl    *Controller
	deals   map[string]string
	pending func(id string) bool
	now     func() time.Time
	width   int
}

func New() *View {
	return &View{
		ctrl:    NewController(),
		deals:   make(map[string]string),
		pending: func(string) bool { return false },
		now:     time.Now,
	}
}

func (v *View) Controller() *Controller {
	return v.ctrl
}

func (v *View) SetTasks(tasks []crm.Task) {
	v.ctrl.SetTasks(tasks)
}

// SetDeals refreshes the deal titles shown next to linked tasks.
func (v *View) SetDeals(deals []crm.Deal) {
	clear(v.deals)
	for _, d := range deals {
		v.deals[d.ID] = d.Title
	}
}

func (v *View) SetPending(fn func(id string) bool) {
	if fn != nil {
		v.pending = fn
	}
}

func (v *View) SetSize(width, height int) {
	v.width = width
	v.ctrl.SetSize(height)
}

func (v *View) View() string {
	if v.ctrl.Len() == 0 {
		return styles.TextMutedStyle.Render("No tasks. Nothing to do.")
	}

	tasks, cursor := v.ctrl.Visible()
	now := v.now()
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		lines = append(lines, v.renderRow(t, i == cursor, now))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderRow(t crm.Task, current bool, now time.Time) string {
	cursor := "  "
	if current {
		cursor = styles.TextPrimaryStyle.Render(styles.IconCursor) + " "
	}

	mark := " "
	if v.ctrl.IsMarked(t.ID) {
		mark = styles.SelectedStyle.Render(styles.IconMarked)
	}

	check := styles.TextMutedStyle.Render(styles.IconUnchecked)
	title := t.Title
	if t.Completed {
		check = styles.TextSuccessStyle.Render(styles.IconCheck)
		title = styles.TextMutedStyle.Strikethrough(true).Render(title)
	}
	if v.pending(t.ID) {
		title = styles.PendingStyle.Render(t.Title)
	}

	var meta []string
	if deal := v.deals[t.DealID]; deal != "" {
		meta = append(meta, deal)
	}
	if !t.DueAt.IsZero() {
		due := "due " + t.DueAt.Format("Jan 2")
		if t.Overdue(now) {
			due = styles.TextErrorStyle.Render("overdue " + t.DueAt.Format("Jan 2"))
		}
		meta = append(meta, due)
	}

	row := fmt.Sprintf("%s%s %s %s", cursor, mark, check, title)
	if len(meta) > 0 {
		row += "  " + styles.TextMutedStyle.Render(strings.Join(meta, " · "))
	}
	if v.width > 0 {
		row = ansi.Truncate(row, v.width, "…")
	}
	return row
}
