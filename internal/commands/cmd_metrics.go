package commands

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

const monthLayout = "2006-01"

// MetricsCmd implements the runway metrics command.
type MetricsCmd struct {
	flags *Flags

	jsonOutput bool

	// record flags
	month     string
	snap      metrics.Snapshot
	snapshots iojson.FileReader[metrics.Snapshot]
}

// NewMetricsCmd creates a new metrics command.
func NewMetricsCmd(flags *Flags) *MetricsCmd {
	return &MetricsCmd{flags: flags}
}

// Register adds the metrics command to the application.
func (cmd *MetricsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "metrics",
		Usage: "Show runway, MRR growth and burn",
		Description: `Prints the financial summary from the monthly snapshots.

Examples:
  runway metrics
  runway metrics record --month 2026-03 --mrr 18200 --burn 61000 --cash 540000
  runway metrics record -f snapshot.json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runSummary,
		Commands: []*cli.Command{
			{
				Name:      "record",
				Usage:     "Record a monthly snapshot",
				UsageText: "runway metrics record --month <yyyy-mm> --mrr <n> --burn <n> --cash <n> [--customers <n>] | -f <file>",
				Flags: []cli.Flag{
					cmd.snapshots.Flag(),
					&cli.StringFlag{Name: "month", Usage: "month in YYYY-MM form (defaults to the current month)", Destination: &cmd.month},
					&cli.FloatFlag{Name: "mrr", Usage: "monthly recurring revenue", Destination: &cmd.snap.MRR},
					&cli.FloatFlag{Name: "burn", Usage: "monthly spend", Destination: &cmd.snap.Burn},
					&cli.FloatFlag{Name: "cash", Usage: "cash in the bank at month end", Destination: &cmd.snap.Cash},
					&cli.IntFlag{Name: "customers", Usage: "paying customers", Destination: &cmd.snap.Customers},
				},
				Action: cmd.runRecord,
			},
		},
	})

	return app
}

// summaryJSON replaces an infinite runway with null.
type summaryJSON struct {
	Month     string    `json:"month"`
	Runway    *float64  `json:"runway_months"`
	Growth    float64   `json:"growth"`
	MRR       float64   `json:"mrr"`
	Burn      float64   `json:"burn"`
	NetBurn   float64   `json:"net_burn"`
	Cash      float64   `json:"cash"`
	MRRSeries []float64 `json:"mrr_series"`
}

func (cmd *MetricsCmd) runSummary(ctx context.Context, c *cli.Command) error {
	sum, err := cmd.flags.App.Metrics.Summary(ctx)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	if sum.Empty() {
		p.Infof("No snapshots yet. Record one with 'runway metrics record'.")
		return nil
	}

	latest := sum.Latest
	if cmd.jsonOutput {
		out := summaryJSON{
			Month:     latest.Month.Format(monthLayout),
			Growth:    sum.Growth,
			MRR:       latest.MRR,
			Burn:      latest.Burn,
			NetBurn:   latest.NetBurn(),
			Cash:      latest.Cash,
			MRRSeries: sum.MRR,
		}
		if !math.IsInf(sum.Runway, 1) {
			out.Runway = &sum.Runway
		}
		return iojson.WriteIndent(c.Root().Writer, out)
	}

	p.Section(fmt.Sprintf("Runway as of %s", latest.Month.Format("January 2006")))
	p.Printf("  Runway    %s", metrics.FormatRunway(sum.Runway))
	p.Printf("  MRR       %s (%s MoM)", metrics.FormatMoney(latest.MRR), metrics.FormatPercent(sum.Growth))
	p.Printf("  Net burn  %s / month", metrics.FormatMoney(latest.NetBurn()))
	p.Printf("  Cash      %s", metrics.FormatMoney(latest.Cash))
	p.Printf("")
	p.Printf("  MRR trend %s", styles.TextPrimaryStyle.Render(metrics.Sparkline(sum.MRR, 24)))
	return nil
}

func (cmd *MetricsCmd) runRecord(ctx context.Context, _ *cli.Command) error {
	snap := cmd.snap
	fromFlags := snap.MRR != 0 || snap.Burn != 0 || snap.Cash != 0

	switch {
	case fromFlags:
		month, err := parseMonth(cmd.month, time.Now())
		if err != nil {
			return err
		}
		snap.Month = month
	case cmd.snapshots.Provided():
		var err error
		if snap, err = cmd.snapshots.Read(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to record: pass --mrr/--burn/--cash or a snapshot file")
	}

	if snap.Month.IsZero() {
		return fmt.Errorf("snapshot month is required")
	}
	snap.Month = monthStart(snap.Month)
	snap.ID = snap.Month.Format(monthLayout)

	ctx = logging.WithCommand(ctx, "metrics record")
	if err := cmd.flags.App.Metrics.Record(ctx, snap); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Recorded %s: MRR %s, burn %s, cash %s",
		snap.ID, metrics.FormatMoney(snap.MRR), metrics.FormatMoney(snap.Burn), metrics.FormatMoney(snap.Cash))
	return nil
}

// parseMonth parses a YYYY-MM month, defaulting to now's month.
func parseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return monthStart(now), nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: want YYYY-MM", s)
	}
	return t, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
