package board

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/styles"
)

const minColumnWidth = 18

// View renders the board.
type View struct {
	ctrl      *Controller
	companies map[string]string
	pending   func(id string) bool
	width     int
	height    int
}

func New() *View {
	return &View{
		ctrl:      NewController(),
		companies: make(map[string]string),
		pending:   func(string) bool { return false },
	}
}

// Controller exposes the cursor for key handling.
func (v *View) Controller() *Controller {
	return v.ctrl
}

// SetDeals replaces the deals shown on the board.
func (v *View) SetDeals(deals []crm.Deal) {
	v.ctrl.SetDeals(deals)
}

// SetCustomers refreshes the company names shown on cards.
func (v *View) SetCustomers(customers []crm.Customer) {
	clear(v.companies)
	for _, c := range customers {
		v.companies[c.ID] = c.Company
	}
}

// SetPending sets the lookup used to mark deals with an unresolved update.
func (v *View) SetPending(fn func(id string) bool) {
	if fn != nil {
		v.pending = fn
	}
}

func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *View) View() string {
	cols := v.ctrl.Columns()
	colWidth := max(v.width/len(cols)-2, minColumnWidth)

	rendered := make([]string, len(cols))
	for i, deals := range cols {
		rendered[i] = v.renderColumn(i, deals, colWidth)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *View) renderColumn(idx int, deals []crm.Deal, width int) string {
	stage := crm.Stages[idx]
	active := idx == v.ctrl.Column()

	var total float64
	for _, d := range deals {
		total += d.Value
	}

	header := lipgloss.NewStyle().
		Foreground(styles.StageColor(idx)).
		Bold(true).
		Render(fmt.Sprintf("%s (%d)", stage.Title(), len(deals)))
	sub := styles.TextMutedStyle.Render(metrics.FormatMoney(total))

	lines := []string{header, sub, ""}
	for ri, d := range deals {
		lines = append(lines, v.renderCard(d, width-2, active && ri == v.ctrl.Row()))
	}
	if len(deals) == 0 {
		lines = append(lines, styles.TextMutedStyle.Render("no deals"))
	}

	style := styles.ColumnStyle
	if active {
		style = styles.ColumnActiveStyle
	}
	if v.height > 0 {
		style = style.Height(max(v.height-2, len(lines)))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (v *View) renderCard(d crm.Deal, width int, selected bool) string {
	title := ansi.Truncate(d.Title, width, "…")
	detail := metrics.FormatMoney(d.Value)
	if company := v.companies[d.CustomerID]; company != "" {
		detail = ansi.Truncate(company, max(width-len(detail)-3, 4), "…") + " · " + detail
	}

	card := title + "\n" + styles.TextMutedStyle.Render(detail)
	if v.pending(d.ID) {
		card = styles.PendingStyle.Render(styles.IconPending+" "+title) + "\n" + styles.TextMutedStyle.Render(detail)
	}
	if selected {
		return styles.CardSelectedStyle.Width(width).Render(card)
	}
	return styles.CardStyle.Width(width).Render(card)
}
