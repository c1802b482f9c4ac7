package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

// InsightsCmd implements the runway insights command group.
type InsightsCmd struct {
	flags *Flags

	all        bool
	jsonOutput bool
}

// NewInsightsCmd creates a new insights command.
func NewInsightsCmd(flags *Flags) *InsightsCmd {
	return &InsightsCmd{flags: flags}
}

// Register adds the insights command to the application.
func (cmd *InsightsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "insights",
		Usage: "Review generated pipeline insights",
		Description: `Insight commands. New insights come from "runway generate insights".

Examples:
  runway insights ls
  runway insights dismiss <id>`,
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List insights",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include dismissed insights", Destination: &cmd.all},
					&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "dismiss",
				Usage:     "Dismiss insights",
				UsageText: "runway insights dismiss <id>...",
				Action:    cmd.runDismiss,
			},
		},
	})

	return app
}

func (cmd *InsightsCmd) runLs(ctx context.Context, c *cli.Command) error {
	insights, err := cmd.flags.App.CRM.Insights(ctx, cmd.all)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLines(out, insights)
	}

	if len(insights) == 0 {
		printer.Ctx(ctx).Infof("No insights yet. Run 'runway generate insights' to create some.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tMESSAGE")
	for _, in := range insights {
		msg := in.Message
		if in.Dismissed {
			msg += " (dismissed)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", in.ID, in.Kind, msg)
	}
	return w.Flush()
}

func (cmd *InsightsCmd) runDismiss(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one insight id is required")
	}

	ctx = logging.WithCommand(ctx, "insights dismiss")
	a := cmd.flags.App

	insights, err := a.CRM.Insights(ctx, true)
	if err != nil {
		return err
	}

	b := newBatch(ctx, a, crm.CollectionInsights, crm.InsightID, insights)
	b.apply(ctx, ids, crm.DismissInsight(), a.CRM.CommitInsight)
	if err := b.report(ctx, "insight"); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Dismissed %d insight(s)", len(ids))
	return nil
}
