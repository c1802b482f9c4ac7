// Package insights renders generated insights.
package insights

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/styles"
)

// View lists insights that have not been dismissed, newest first.
type View struct {
	items   []crm.Insight
	cursor  int
	pending func(id string) bool
	width   int
	height  int
}

func New() *View {
	return &View{pending: func(string) bool { return false }}
}

// SetInsights replaces the list. Dismissed insights are hidden.
func (v *View) SetInsights(items []crm.Insight) {
	selected, _ := v.Selected()

	v.items = v.items[:0]
	for _, in := range items {
		if !in.Dismissed {
			v.items = append(v.items, in)
		}
	}

	for i, in := range v.items {
		if in.ID == selected.ID {
			v.cursor = i
		}
	}
	v.cursor = max(min(v.cursor, len(v.items)-1), 0)
}

func (v *View) SetPending(fn func(id string) bool) {
	if fn != nil {
		v.pending = fn
	}
}

func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *View) Up() {
	if v.cursor > 0 {
		v.cursor--
	}
}

func (v *View) Down() {
	if v.cursor < len(v.items)-1 {
		v.cursor++
	}
}

// Selected returns the insight under the cursor.
func (v *View) Selected() (crm.Insight, bool) {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return crm.Insight{}, false
	}
	return v.items[v.cursor], true
}

func (v *View) Len() int {
	return len(v.items)
}

func (v *View) View() string {
	if len(v.items) == 0 {
		return styles.TextMutedStyle.Render("No insights yet. Press g to generate some.")
	}

	width := max(v.width-4, 20)
	var b strings.Builder
	for i, in := range v.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.renderItem(in, i == v.cursor, width))
	}
	return b.String()
}

func (v *View) renderItem(in crm.Insight, current bool, width int) string {
	icon, style := kindStyle(in.Kind)

	cursor := "  "
	if current {
		cursor = styles.TextPrimaryStyle.Render(styles.IconCursor) + " "
	}

	label := style.Bold(true).Render(icon + " " + string(in.Kind))
	when := styles.TextMutedStyle.Render(in.CreatedAt.Format("Jan 2 15:04"))

	msg := in.Message
	if v.pending(in.ID) {
		msg = styles.PendingStyle.Render(msg)
	}
	body := lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(msg)

	return cursor + label + "  " + when + "\n" + body
}

func kindStyle(kind crm.InsightKind) (string, lipgloss.Style) {
	switch kind {
	case crm.InsightOpportunity:
		return styles.IconOpportunity, styles.TextSuccessStyle
	case crm.InsightRisk:
		return styles.IconRisk, styles.TextErrorStyle
	default:
		return styles.IconInsight, styles.TextPrimaryStyle
	}
}
