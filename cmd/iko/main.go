// Command iko runs, checks and formats iko programs.
package main

import (
	"os"

	"github.com/lthibault/log"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/check"
	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/doc"
	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/format"
	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/policy"
	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/repl"
	runcmd "github.com/jeanlauliac/ikolang-sub001/internal/cmd/run"
	"github.com/jeanlauliac/ikolang-sub001/internal/cmd/tokens"
)

const version = "0.1.0"

var flags = []cli.Flag{
	// Logging
	&cli.StringFlag{
		Name:    "logfmt",
		Aliases: []string{"f"},
		Usage:   "`format` logs as text, json or none",
		Value:   "text",
		EnvVars: []string{"IKO_LOGFMT"},
	},
	&cli.StringFlag{
		Name:    "loglvl",
		Usage:   "set logging `level` to trace, debug, info, warn, error or fatal",
		Value:   "warn",
		EnvVars: []string{"IKO_LOGLVL"},
	},
}

var commands = []*cli.Command{
	runcmd.Command(),
	check.Command(),
	format.Command(),
	tokens.Command(),
	repl.Command(),
	policy.Command(),
	doc.Command(),
}

func main() {
	run(&cli.App{
		Name:                 "iko",
		HelpName:             "iko",
		Usage:                "value-semantic expressions, reactive slots and inline markup",
		UsageText:            "iko [global options] command [command options] [arguments...]",
		Version:              version,
		EnableBashCompletion: true,
		Flags:                flags,
		Commands:             commands,
		Metadata: map[string]interface{}{
			"version": version,
		},
	})
}

func run(app *cli.App) {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
