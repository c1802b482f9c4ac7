package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

// DealsCmd implements the runway deals command group.
type DealsCmd struct {
	flags *Flags

	// ls flags
	stage      string
	jsonOutput bool
}

// NewDealsCmd creates a new deals command.
func NewDealsCmd(flags *Flags) *DealsCmd {
	return &DealsCmd{flags: flags}
}

// Register adds the deals command to the application.
func (cmd *DealsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "deals",
		Usage: "List and move deals through the pipeline",
		Description: `Deal commands for the sales pipeline.

Examples:
  runway deals ls                        # every deal
  runway deals ls --stage proposal       # one stage
  runway deals move <id> negotiation     # move a deal
  runway deals pipeline                  # totals per stage`,
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.moveCmd(),
			cmd.pipelineCmd(),
		},
	})

	return app
}

func (cmd *DealsCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List deals",
		UsageText: "runway deals ls [--stage <stage>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "stage",
				Aliases:     []string{"s"},
				Usage:       "only deals in this stage (lead, qualified, proposal, negotiation, won, lost)",
				Destination: &cmd.stage,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *DealsCmd) moveCmd() *cli.Command {
	return &cli.Command{
		Name:          "move",
		Usage:         "Move a deal to another stage",
		UsageText:     "runway deals move <id> <stage>",
		ShellComplete: DealIDCompleter(cmd.flags),
		Action:        cmd.runMove,
	}
}

func (cmd *DealsCmd) pipelineCmd() *cli.Command {
	return &cli.Command{
		Name:   "pipeline",
		Usage:  "Show deal count and value per stage",
		Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput}},
		Action: cmd.runPipeline,
	}
}

func (cmd *DealsCmd) runLs(ctx context.Context, c *cli.Command) error {
	svc := cmd.flags.App.CRM

	var (
		deals []crm.Deal
		err   error
	)
	if cmd.stage != "" {
		stage, perr := crm.ParseStage(cmd.stage)
		if perr != nil {
			return perr
		}
		deals, err = svc.DealsInStage(ctx, stage)
	} else {
		deals, err = svc.Deals(ctx)
	}
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLines(out, deals)
	}

	if len(deals) == 0 {
		printer.Ctx(ctx).Infof("No deals found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTAGE\tVALUE\tPROB")
	for _, d := range deals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n", d.ID, d.Title, d.Stage, metrics.FormatMoney(d.Value), d.Probability)
	}
	return w.Flush()
}

func (cmd *DealsCmd) runMove(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: runway deals move <id> <stage>")
	}
	id := c.Args().Get(0)
	stage, err := crm.ParseStage(c.Args().Get(1))
	if err != nil {
		return err
	}

	ctx = logging.WithCommand(ctx, "deals move")
	a := cmd.flags.App

	deals, err := a.CRM.Deals(ctx)
	if err != nil {
		return err
	}

	b := newBatch(ctx, a, crm.CollectionDeals, crm.DealID, deals)
	b.apply(ctx, []string{id}, crm.MoveDeal(stage), a.CRM.CommitDeal)
	if err := b.report(ctx, "deal"); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Moved %s to %s", id, stage.Title())
	return nil
}

func (cmd *DealsCmd) runPipeline(ctx context.Context, c *cli.Command) error {
	summary, err := cmd.flags.App.CRM.Pipeline(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLines(out, summary)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tDEALS\tVALUE\tWEIGHTED")
	for _, s := range summary {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Stage.Title(), s.Count, metrics.FormatMoney(s.Value), metrics.FormatMoney(s.Weighted))
	}
	_, _ = fmt.Fprintf(w, "\nOpen pipeline\t\t%s\t\n", metrics.FormatMoney(crm.OpenPipelineValue(summary)))
	return w.Flush()
}
