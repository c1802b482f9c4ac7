package commands

import (
	"fmt"

	"github.com/urfave/cli/v3"
)

// exitf returns an exit-code-1 error carrying a formatted message.
func exitf(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), 1)
}
