// Package metrics computes the financial dashboard figures: runway, growth
// and the MRR trend.
package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CollectionSnapshots is the storage collection for monthly snapshots.
const CollectionSnapshots = "snapshots"

// Snapshot is the financial state at the close of one month.
type Snapshot struct {
	ID        string    `json:"id"`
	Month     time.Time `json:"month"`
	MRR       float64   `json:"mrr"`
	Burn      float64   `json:"burn"`
	Cash      float64   `json:"cash"`
	Customers int       `json:"customers"`
}

func (s Snapshot) EntityID() string { return s.ID }

// NetBurn is monthly spend not covered by recurring revenue.
func (s Snapshot) NetBurn() float64 {
	return s.Burn - s.MRR
}

// Runway returns the months of cash left at the snapshot's net burn. It is
// +Inf when revenue covers spend.
func Runway(s Snapshot) float64 {
	net := s.NetBurn()
	if net <= 0 {
		return math.Inf(1)
	}
	return max(s.Cash, 0) / net
}

// Growth returns month-over-month MRR growth as a fraction (0.1 is 10%). It
// is 0 when the previous month had no revenue.
func Growth(prev, cur Snapshot) float64 {
	if prev.MRR == 0 {
		return 0
	}
	return (cur.MRR - prev.MRR) / prev.MRR
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as block characters, keeping the most recent
// width values when there are more.
func Sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// FormatRunway renders a runway figure for display.
func FormatRunway(months float64) string {
	if math.IsInf(months, 1) {
		return "∞ (profitable)"
	}
	return fmt.Sprintf("%.1f months", months)
}

// FormatPercent renders a growth fraction with an explicit sign.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%+.1f%%", f*100)
}

// FormatMoney renders an amount compactly: $950, $12.4k, $3.1M.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, v/1_000_000)
	case v >= 10_000:
		return fmt.Sprintf("%s$%.1fk", sign, v/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, v)
	}
}
