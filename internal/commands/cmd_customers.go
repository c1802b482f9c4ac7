package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/runway/internal/core/crm"
	"github.com/colonyops/runway/internal/core/logging"
	"github.com/colonyops/runway/internal/core/metrics"
	"github.com/colonyops/runway/internal/printer"
	"github.com/colonyops/runway/pkg/iojson"
)

// CustomersCmd implements the runway customers command group.
type CustomersCmd struct {
	flags *Flags

	jsonOutput bool

	// add flags
	input crm.CustomerInput
}

// NewCustomersCmd creates a new customers command.
func NewCustomersCmd(flags *Flags) *CustomersCmd {
	return &CustomersCmd{flags: flags}
}

// Register adds the customers command to the application.
func (cmd *CustomersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "customers",
		Usage: "List, add and import customers",
		Description: `Customer commands.

"add" opens a form when --name is not given and a terminal is attached.
"import" reads CSV files with a header row (name, company, email, status,
value); patterns may use ** to match nested directories.

Examples:
  runway customers ls
  runway customers add --name "Ana Ruiz" --company Initech --value 1200
  runway customers import 'exports/**/*.csv'`,
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List customers",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Add a customer",
				UsageText: "runway customers add [--name <name>] [--company <company>] [--email <email>] [--status <status>] [--value <mrr>]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "contact name", Destination: &cmd.input.Name},
					&cli.StringFlag{Name: "company", Usage: "company name", Destination: &cmd.input.Company},
					&cli.StringFlag{Name: "email", Usage: "contact email", Destination: &cmd.input.Email},
					&cli.StringFlag{Name: "status", Usage: "lead, active or churned", Value: "lead", Destination: &cmd.input.Status},
					&cli.FloatFlag{Name: "value", Usage: "monthly recurring revenue", Destination: &cmd.input.Value},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "import",
				Usage:     "Import customers from CSV files",
				UsageText: "runway customers import <glob>...",
				Action:    cmd.runImport,
			},
		},
	})

	return app
}

func (cmd *CustomersCmd) runLs(ctx context.Context, c *cli.Command) error {
	customers, err := cmd.flags.App.CRM.Customers(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLines(out, customers)
	}

	if len(customers) == 0 {
		printer.Ctx(ctx).Infof("No customers yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tSTATUS\tMRR")
	for _, cu := range customers {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cu.ID, cu.Name, cu.Company, cu.Status, metrics.FormatMoney(cu.Value))
	}
	return w.Flush()
}

func (cmd *CustomersCmd) runAdd(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.input.Name == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--name is required when no terminal is attached")
		}
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	ctx = logging.WithCommand(ctx, "customers add")
	c, err := cmd.flags.App.CRM.AddCustomer(ctx, cmd.input)
	if err != nil {
		return err
	}

	p.Successf("Added %s (%s)", c.Name, c.ID)
	return nil
}

func (cmd *CustomersCmd) runForm() error {
	value := ""
	if cmd.input.Value > 0 {
		value = strconv.FormatFloat(cmd.input.Value, 'f', -1, 64)
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Validate(required("name")).
				Value(&cmd.input.Name),
			huh.NewInput().
				Title("Company").
				Value(&cmd.input.Company),
			huh.NewInput().
				Title("Email").
				Value(&cmd.input.Email),
			huh.NewSelect[string]().
				Title("Status").
				Options(huh.NewOptions(string(crm.CustomerLead), string(crm.CustomerActive), string(crm.CustomerChurned))...).
				Value(&cmd.input.Status),
			huh.NewInput().
				Title("Monthly value").
				Description("Recurring revenue, blank for none").
				Validate(optionalNumber).
				Value(&value),
		),
	).Run()
	if err != nil {
		return err
	}

	if value != "" {
		cmd.input.Value, _ = strconv.ParseFloat(value, 64)
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func optionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

func (cmd *CustomersCmd) runImport(ctx context.Context, c *cli.Command) error {
	patterns := c.Args().Slice()
	if len(patterns) == 0 {
		return fmt.Errorf("at least one file or glob is required")
	}

	files, err := expandGlobs(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s", strings.Join(patterns, ", "))
	}

	ctx = logging.WithCommand(ctx, "customers import")
	p := printer.Ctx(ctx)

	var added, rejected int
	for _, path := range files {
		n, bad, err := cmd.importFile(ctx, p, path)
		if err != nil {
			return err
		}
		added += n
		rejected += bad
	}

	p.Successf("Imported %d customer(s) from %d file(s)", added, len(files))
	if rejected > 0 {
		return exitf("%d row(s) rejected", rejected)
	}
	return nil
}

func (cmd *CustomersCmd) importFile(ctx context.Context, p *printer.Printer, path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	res, err := cmd.flags.App.CRM.ImportCustomers(ctx, f)
	if err != nil {
		return 0, 0, fmt.Errorf("import %s: %w", path, err)
	}

	for _, rowErr := range res.Errors {
		p.Warnf("%s: %v", path, rowErr)
	}
	return len(res.Added), len(res.Errors), nil
}

// expandGlobs resolves each pattern with doublestar and returns the unique
// matches in order. Patterns without glob characters are kept as-is so a
// missing file reports a clear error on open.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}
