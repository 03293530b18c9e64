// Package tokens contains the `iko tokens` command.
package tokens

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/pkg/lexer"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
)

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "print semantic tokens as JSON, for syntax highlighting",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			cmd.PrettyFlag,
			&cli.BoolFlag{
				Name:  "indent",
				Usage: "indent the JSON output",
			},
		},
		Action: tokens,
	}
}

func tokens(c *cli.Context) error {
	source, filename, err := cmd.ReadSource(c)
	if err != nil {
		return err
	}

	// Tokens found before a syntax error are still printed.
	toks, perr := parser.Tokens(source, filename)
	if toks == nil {
		toks = []lexer.SemanticToken{}
	}

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("indent") {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(toks); err != nil {
		return cli.Exit(err.Error(), cmd.ExitOther)
	}

	if perr != nil {
		return cmd.Report(c, source, perr)
	}
	return nil
}
