// Package check contains the `iko check` command.
package check

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/pkg/runtime"
)

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "parse a module and resolve its names without running it",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{cmd.PrettyFlag},
		Action:    check,
	}
}

func check(c *cli.Context) error {
	source, filename, err := cmd.ReadSource(c)
	if err != nil {
		return err
	}

	if diags := runtime.New().Check(source, filename); len(diags) > 0 {
		cmd.PrintDiagnostics(c.App.ErrWriter, source, diags, c.Bool("pretty"))
		return cli.Exit("", cmd.ExitCheck)
	}

	if c.Bool("pretty") {
		fmt.Fprintln(c.App.Writer, "No errors found.")
	} else {
		fmt.Fprintln(c.App.Writer, "[]")
	}
	return nil
}
