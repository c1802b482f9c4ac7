// Package metrics renders the runway dashboard.
package metrics

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/styles"
)

const (
	tileWidth    = 24
	historyRows  = 12
	runwayDanger = 6
	runwayWarn   = 12
)

// View shows headline figures, an MRR sparkline and recent snapshots.
type View struct {
	summary metrics.Summary
	width   int
	height  int
}

func New() *View {
	return &View{}
}

func (v *View) SetSummary(s metrics.Summary) {
	v.summary = s
}

func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *View) View() string {
	if v.summary.Empty() {
		return styles.TextMutedStyle.Render("No snapshots recorded. Run `runway seed` or record one with `runway metrics record`.")
	}

	latest := v.summary.Latest
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Runway", metrics.FormatRunway(v.summary.Runway), runwayStyle(v.summary.Runway)),
		tile("MRR", metrics.FormatMoney(latest.MRR), styles.TextForegroundStyle),
		tile("MoM growth", metrics.FormatPercent(v.summary.Growth), growthStyle(v.summary.Growth)),
		tile("Cash", metrics.FormatMoney(latest.Cash), styles.TextForegroundStyle),
	)

	sparkWidth := max(min(v.width-10, 60), 8)
	spark := styles.TextPrimaryStyle.Render(metrics.Sparkline(v.summary.MRR, sparkWidth))

	return lipgloss.JoinVertical(lipgloss.Left,
		tiles,
		"",
		styles.TextMutedStyle.Render("MRR")+"  "+spark,
		"",
		v.renderHistory(),
	)
}

func (v *View) renderHistory() string {
	history := v.summary.History
	rows := historyRows
	if v.height > 0 {
		rows = max(min(rows, v.height-12), 3)
	}
	if len(history) > rows {
		history = history[len(history)-rows:]
	}

	var b strings.Builder
	b.WriteString(styles.TextMutedStyle.Render(fmt.Sprintf("%-10s %10s %10s %10s %10s %9s", "Month", "MRR", "Burn", "Net burn", "Cash", "Customers")))
	for i := len(history) - 1; i >= 0; i-- {
		s := history[i]
		fmt.Fprintf(&b, "\n%-10s %10s %10s %10s %10s %9d",
			s.Month.Format("Jan 2006"),
			metrics.FormatMoney(s.MRR),
			metrics.FormatMoney(s.Burn),
			metrics.FormatMoney(s.NetBurn()),
			metrics.FormatMoney(s.Cash),
			s.Customers,
		)
	}
	return b.String()
}

func tile(label, value string, style lipgloss.Style) string {
	content := styles.TextMutedStyle.Render(label) + "\n" + style.Bold(true).Render(value)
	return styles.ColumnStyle.Width(tileWidth).Render(content)
}

func runwayStyle(months float64) lipgloss.Style {
	switch {
	case months < runwayDanger:
		return styles.TextErrorStyle
	case months < runwayWarn:
		return styles.TextWarningStyle
	default:
		return styles.TextSuccessStyle
	}
}

func growthStyle(g float64) lipgloss.Style {
	if g < 0 {
		return styles.TextErrorStyle
	}
	return styles.TextSuccessStyle
}
