package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/printer"
)

// SeedCmd implements the runway seed command.
type SeedCmd struct {
	flags *Flags
	yes   bool
}

// NewSeedCmd creates a new seed command.
func NewSeedCmd(flags *Flags) *SeedCmd {
	return &SeedCmd{flags: flags}
}

// Register adds the seed command to the application.
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "seed",
		Usage: "Replace all data with the sample startup",
		Description: `Replaces customers, deals, tasks, insights and snapshots in the configured
backend with sample data. Existing records are deleted.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt", Destination: &cmd.yes},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SeedCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	a := cmd.flags.App

	if !cmd.yes && !a.Demo() {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to replace data without --yes")
		}

		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Replace all data in the %s backend?", a.Backend())).
			Affirmative("Replace").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil || !confirmed {
			p.Infof("Nothing changed")
			return nil
		}
	}

	ctx = logging.WithCommand(ctx, "seed")
	if err := a.Seed(ctx); err != nil {
		return err
	}

	p.Successf("Seeded %s backend with sample data", a.Backend())
	return nil
}
