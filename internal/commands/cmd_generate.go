package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/runway/internal/core/genai"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/styles"
	"github.com/colonyops/runway/internal/core/typewriter"
	"github.com/colonyops/runway/pkg/iojson"
)

// actionFields lists the request fields each action accepts as flags.
var actionFields = map[genai.Action][]string{
	genai.ActionPitchDeck:    {"company", "problem", "solution", "market", "traction", "slides"},
	genai.ActionEmail:        {"recipient", "company", "purpose", "tone", "context"},
	genai.ActionMarketSizing: {"product", "industry", "region", "segment"},
	genai.ActionLeadScore:    {"name", "company", "email", "title", "value", "notes"},
	genai.ActionInsights:     {"focus", "max"},
}

// GenerateCmd implements the runway generate command.
type GenerateCmd struct {
	flags *Flags

	render     bool
	jsonOutput bool
	deal       string
	delay      time.Duration
}

// NewGenerateCmd creates a new generate command.
func NewGenerateCmd(flags *Flags) *GenerateCmd {
	return &GenerateCmd{flags: flags}
}

// Register adds the generate command to the application.
func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{Name: "render", Aliases: []string{"r"}, Usage: "render the result as markdown", Destination: &cmd.render},
		&cli.BoolFlag{Name: "json", Usage: "print the validated result as JSON", Destination: &cmd.jsonOutput},
		&cli.StringFlag{Name: "deal", Usage: "prefill an email from this deal", Destination: &cmd.deal},
		&cli.DurationFlag{Name: "delay", Usage: "per-character typing delay on a terminal (0 uses the config value)", Destination: &cmd.delay},
	}

	seen := map[string]bool{}
	for _, action := range genai.Actions() {
		for _, f := range actionFields[action] {
			if seen[f] {
				continue
			}
			seen[f] = true
			flags = append(flags, &cli.StringFlag{Name: f, Usage: "request field " + f, Category: "Request fields"})
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate text for pitch decks, emails, market sizing, lead scores or insights",
		UsageText: "runway generate <action> [--<field> <value>...]",
		Description: `Runs one generation. Actions: pitch-deck, email, market-sizing, lead-score,
insights. On a terminal the reply is typed out as it is revealed; when piped
it is written in one piece.

"insights" summarises the current pipeline itself and stores the results.

Examples:
  runway generate email --recipient Sam --purpose "renewal check-in"
  runway generate email --deal <id> --render
  runway generate lead-score --name "Ana Ruiz" --company Initech --value 4000
  runway generate insights --focus churn`,
		Flags:  flags,
		Action: cmd.run,
	})

	return app
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: runway generate <action>; actions: %s", actionNames())
	}
	action, err := genai.ParseAction(c.Args().First())
	if err != nil {
		return err
	}

	ctx = logging.WithCommand(ctx, "generate "+string(action))

	res, err := cmd.generate(ctx, c, action)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteIndent(out, res)
	}

	text := res.Text()
	if res.Score != nil && action == genai.ActionLeadScore {
		text = fmt.Sprintf("Score: %d/100\n\n%s", *res.Score, text)
	}

	switch {
	case cmd.render:
		_, err = fmt.Fprintln(out, renderMarkdown(text))
		return err
	case out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())):
		return cmd.typeOut(ctx, os.Stdout, text)
	default:
		_, err = fmt.Fprintln(out, strings.TrimRight(text, "\n"))
		return err
	}
}

func (cmd *GenerateCmd) generate(ctx context.Context, c *cli.Command, action genai.Action) (genai.Result, error) {
	a := cmd.flags.App

	if action == genai.ActionInsights {
		added, err := a.GenerateInsights(ctx, c.String("focus"))
		if err != nil {
			return genai.Result{}, err
		}
		res := genai.Result{Action: action}
		for _, in := range added {
			res.Insights = append(res.Insights, in.Message)
		}
		return res, nil
	}

	var (
		req genai.Request
		err error
	)
	if cmd.deal != "" && action == genai.ActionEmail {
		req, err = cmd.dealEmail(ctx, c)
	} else {
		req, err = genai.NewRequest(action, requestFields(c, action))
	}
	if err != nil {
		return genai.Result{}, err
	}

	return a.Generator.Generate(ctx, req)
}

// dealEmail prefills an email request from a deal; explicit flags win.
func (cmd *GenerateCmd) dealEmail(ctx context.Context, c *cli.Command) (genai.Request, error) {
	a := cmd.flags.App

	deal, err := a.CRM.Deal(ctx, cmd.deal)
	if err != nil {
		return nil, fmt.Errorf("deal %s: %w", cmd.deal, err)
	}
	req, err := a.EmailRequest(ctx, deal)
	if err != nil {
		return nil, err
	}

	set := requestFields(c, genai.ActionEmail)
	if v, ok := set["recipient"]; ok {
		req.Recipient = v
	}
	if v, ok := set["purpose"]; ok {
		req.Purpose = v
	}
	if v, ok := set["tone"]; ok {
		req.Tone = v
	}
	if v, ok := set["context"]; ok {
		req.Context = v
	}
	return req, nil
}

// requestFields collects the flags set for action's fields.
func requestFields(c *cli.Command, action genai.Action) map[string]string {
	fields := make(map[string]string)
	for _, f := range actionFields[action] {
		if c.IsSet(f) {
			fields[f] = c.String(f)
		}
	}
	return fields
}

func actionNames() string {
	names := make([]string, 0, len(genai.Actions()))
	for _, a := range genai.Actions() {
		names = append(names, strings.ReplaceAll(string(a), "_", "-"))
	}
	return strings.Join(names, ", ")
}

// typeOut reveals text on w at typing speed. Interrupting prints the rest at
// once so the reply is never lost.
func (cmd *GenerateCmd) typeOut(ctx context.Context, w io.StringWriter, text string) error {
	delay := cmd.delay
	if delay <= 0 {
		delay = cmd.flags.Config.TUI.TypewriterDelay
	}

	emit := typewriter.Writer(w)
	err := typewriter.Run(ctx, text, delay, emit)
	if errors.Is(err, context.Canceled) {
		emit(text)
		err = nil
	}
	_, _ = w.WriteString("\n")
	return err
}

func renderMarkdown(text string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 120)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
