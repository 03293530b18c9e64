// Package cmd holds what the iko subcommands share: source loading,
// diagnostic reporting and exit codes.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/pkg/diagnostics"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/runtime"
)

// Exit codes.
const (
	ExitUsage   = 1 // bad arguments, unreadable files
	ExitCheck   = 2 // diagnostics found before running
	ExitRuntime = 3 // the program failed while running
	ExitOther   = 4
)

// StdinFile is the file name reported for source read from stdin.
const StdinFile = "<stdin>"

// PrettyFlag selects caret snippets over JSON diagnostics.
var PrettyFlag = &cli.BoolFlag{
	Name:    "pretty",
	Aliases: []string{"p"},
	Usage:   "print diagnostics with source snippets instead of JSON",
	EnvVars: []string{"IKO_PRETTY"},
}

// ReadSource reads the file named by the first argument, or stdin for "-".
func ReadSource(c *cli.Context) (source, filename string, err error) {
	filename = c.Args().First()
	if filename == "" {
		return "", "", cli.Exit(fmt.Sprintf("usage: %s %s", c.App.HelpName, c.Command.ArgsUsage), ExitUsage)
	}

	var data []byte
	if filename == "-" {
		filename = StdinFile
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		d := diagnostics.MakeDiag(diagnostics.EIO, errors.Wrap(err, "read source").Error(), nil, "")
		fmt.Fprintln(c.App.ErrWriter, diagnostics.FormatDiagnostic(d, c.Bool("pretty")))
		return "", "", cli.Exit("", ExitUsage)
	}
	return string(data), filename, nil
}

// Report prints the diagnostics err carries and returns the matching exit
// error. Errors without diagnostics are returned wrapped.
func Report(c *cli.Context, source string, err error) error {
	diags := runtime.Diagnostics(err)
	if len(diags) == 0 {
		return cli.Exit(err.Error(), ExitOther)
	}
	PrintDiagnostics(c.App.ErrWriter, source, diags, c.Bool("pretty"))
	return cli.Exit("", ExitCode(err))
}

// PrintDiagnostics writes diags as caret snippets or as one JSON array.
func PrintDiagnostics(w io.Writer, source string, diags []diagnostics.Diagnostic, pretty bool) {
	if !pretty {
		fmt.Fprintln(w, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	for _, d := range diags {
		fmt.Fprintln(w, strings.TrimSuffix(diagnostics.Render(source, d), "\n"))
	}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var rerr *evaluator.RuntimeError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &rerr):
		return ExitRuntime
	case runtime.Diagnostics(err) != nil:
		return ExitCheck
	}
	return ExitOther
}
