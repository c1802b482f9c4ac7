package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/runway/internal/core/notify"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

// NotificationsCmd lists and clears the persisted notification history.
type NotificationsCmd struct {
	flags      *Flags
	jsonOutput bool
}

func NewNotificationsCmd(flags *Flags) *NotificationsCmd {
	return &NotificationsCmd{flags: flags}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notifs"},
		Usage:   "Show failed updates and other notifications, newest first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Delete the notification history",
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	history, err := cmd.flags.App.Notify.History()
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLines(c.Root().Writer, history)
	}

	p := printer.Ctx(ctx)
	if len(history) == 0 {
		p.Infof("No notifications")
		return nil
	}

	for _, n := range history {
		ts := n.CreatedAt.Local().Format("Jan 2 15:04")
		switch n.Level {
		case notify.LevelError:
			p.Errorf("%s  %s", ts, n)
		case notify.LevelWarning:
			p.Warnf("%s  %s", ts, n)
		default:
			p.Infof("%s  %s", ts, n)
		}
	}
	return nil
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.App.Notify.Clear(); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Cleared notifications")
	return nil
}
