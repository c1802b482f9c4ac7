package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

// TasksCmd implements the runway tasks command group.
type TasksCmd struct {
	flags *Flags

	jsonOutput bool
	all        bool
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags) *TasksCmd {
	return &TasksCmd{flags: flags}
}

// Register adds the tasks command to the application.
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "Manage follow-up tasks",
		Description: `Task commands. Every id argument may be repeated; updates to several
tasks run concurrently and each failure is reported on its own.

Examples:
  runway tasks ls
  runway tasks done <id> <id>
  runway tasks reopen <id>
  runway tasks rm <id>`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List tasks",
				UsageText: "runway tasks ls [--all] [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include completed tasks", Destination: &cmd.all},
					&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runLs,
			},
			{
				Name:          "done",
				Usage:         "Mark tasks completed",
				UsageText:     "runway tasks done <id>...",
				ShellComplete: TaskIDCompleter(cmd.flags),
				Action:        cmd.setCompleted(true),
			},
			{
				Name:          "reopen",
				Usage:         "Mark tasks open again",
				UsageText:     "runway tasks reopen <id>...",
				ShellComplete: TaskIDCompleter(cmd.flags),
				Action:        cmd.setCompleted(false),
			},
			{
				Name:          "rm",
				Usage:         "Delete tasks",
				UsageText:     "runway tasks rm <id>...",
				ShellComplete: TaskIDCompleter(cmd.flags),
				Action:        cmd.runRm,
			},
		},
	})

	return app
}

func (cmd *TasksCmd) runLs(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.flags.App.CRM.Tasks(ctx)
	if err != nil {
		return err
	}

	if !cmd.all {
		open := tasks[:0]
		for _, t := range tasks {
			if !t.Completed {
				open = append(open, t)
			}
		}
		tasks = open
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLines(out, tasks)
	}

	if len(tasks) == 0 {
		printer.Ctx(ctx).Infof("No tasks. Nothing to do.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tDUE\tSTATUS")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Title, formatDue(t), taskStatus(t, now))
	}
	return w.Flush()
}

func formatDue(t crm.Task) string {
	if t.DueAt.IsZero() {
		return "-"
	}
	return t.DueAt.Format("Jan 2")
}

func taskStatus(t crm.Task, now time.Time) string {
	switch {
	case t.Completed:
		return "done"
	case t.Overdue(now):
		return "overdue"
	default:
		return "open"
	}
}

func (cmd *TasksCmd) setCompleted(done bool) cli.ActionFunc {
	verb := "Completed"
	name := "tasks done"
	if !done {
		verb, name = "Reopened", "tasks reopen"
	}

	return func(ctx context.Context, c *cli.Command) error {
		ids := c.Args().Slice()
		if len(ids) == 0 {
			return fmt.Errorf("at least one task id is required")
		}

		ctx = logging.WithCommand(ctx, name)
		a := cmd.flags.App

		tasks, err := a.CRM.Tasks(ctx)
		if err != nil {
			return err
		}

		b := newBatch(ctx, a, crm.CollectionTasks, crm.TaskID, tasks)
		b.apply(ctx, ids, crm.SetTaskCompleted(done), a.CRM.CommitTask)
		err = b.report(ctx, "task")

		if n := len(ids) - len(b.missing) - int(b.failed.Load()); n > 0 {
			printer.Ctx(ctx).Successf("%s %d task(s)", verb, n)
		}
		return err
	}
}

func (cmd *TasksCmd) runRm(ctx context.Context, c *cli.Command) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one task id is required")
	}

	ctx = logging.WithCommand(ctx, "tasks rm")
	a := cmd.flags.App

	tasks, err := a.CRM.Tasks(ctx)
	if err != nil {
		return err
	}

	b := newBatch(ctx, a, crm.CollectionTasks, crm.TaskID, tasks)
	b.remove(ctx, ids, a.CRM.DeleteTasks)
	if err := b.report(ctx, "task"); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Deleted %d task(s)", len(ids))
	return nil
}
