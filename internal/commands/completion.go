package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DealIDCompleter suggests open deal IDs as positional completions, with the
// deal title as the description.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func DealIDCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		deals, err := flags.App.CRM.Deals(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, d := range deals {
			if d.Stage.Closed() {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", d.ID, d.Title)
		}
	}
}

// TaskIDCompleter suggests open task IDs as positional completions.
func TaskIDCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		tasks, err := flags.App.CRM.Tasks(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range tasks {
			if t.Completed {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}

func completingFlag(cmd *cli.Command) bool {
	args := cmd.Args()
	if !args.Present() {
		return false
	}
	last := args.Slice()[args.Len()-1]
	return len(last) > 0 && last[0] == '-'
}
