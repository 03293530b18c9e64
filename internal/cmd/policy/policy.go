// Package policy contains the `iko policy` command.
package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
)

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "policy",
		Usage:     "show which attributes programs may set",
		ArgsUsage: "[dir]",
		Action:    policy,
	}
}

func policy(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cli.Exit(errors.Wrap(err, "getwd").Error(), cmd.ExitUsage)
		}
		dir = wd
	}

	p, source, err := capabilities.LoadPolicy(dir)
	if err != nil {
		return cli.Exit(err.Error(), cmd.ExitUsage)
	}

	if source == "" {
		source = "default"
	}
	fmt.Fprintf(c.App.Writer, "source: %s\n", source)

	if names := p.Names(); names != nil {
		fmt.Fprintf(c.App.Writer, "allow:  %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(c.App.Writer, "allow:  *")
	}
	return nil
}
