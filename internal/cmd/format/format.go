// Package format contains the `iko fmt` command.
package format

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/pkg/formatter"
	"github.com/jeanlauliac/ikolang-sub001/pkg/runtime"
)

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "print a module in canonical form",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			cmd.PrettyFlag,
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "rewrite the file in place instead of printing it",
			},
		},
		Action: format,
	}
}

func format(c *cli.Context) error {
	source, filename, err := cmd.ReadSource(c)
	if err != nil {
		return err
	}

	out, err := runtime.New().Format(source, filename)
	if err != nil {
		return cmd.Report(c, source, err)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(c.App.ErrWriter, "warning: comments are not preserved by the formatter")
	}

	if !c.Bool("write") || filename == cmd.StdinFile {
		fmt.Fprint(c.App.Writer, out)
		return nil
	}
	if err := os.WriteFile(filename, []byte(out), 0644); err != nil {
		return cli.Exit(errors.Wrapf(err, "write %s", filename).Error(), cmd.ExitUsage)
	}
	return nil
}
