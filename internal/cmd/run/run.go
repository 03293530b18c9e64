// Package run contains the `iko run` command.
package run

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/internal/logutil"
	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/runtime"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

var flags = []cli.Flag{
	cmd.PrettyFlag,
	&cli.StringSliceFlag{
		Name:    "root",
		Usage:   "create a document root with `id` for bindNode",
		Value:   cli.NewStringSlice(stdlib.DefaultRoot),
		EnvVars: []string{"IKO_ROOT"},
	},
	&cli.BoolFlag{
		Name:  "dump-dom",
		Usage: "print the document as HTML when the program finishes",
	},
	&cli.BoolFlag{
		Name:    "keep-alive",
		Aliases: []string{"k"},
		Usage:   "keep running while a binding exists, until interrupted",
		EnvVars: []string{"IKO_KEEP_ALIVE"},
	},
	&cli.BoolFlag{
		Name:  "unsafe-allow-all",
		Usage: "allow every attribute, ignoring policy files",
	},
}

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a module's pub let main",
		ArgsUsage: "<file|->",
		Flags:     flags,
		Action:    run(),
	}
}

func run() cli.ActionFunc {
	return func(c *cli.Context) error {
		source, filename, err := cmd.ReadSource(c)
		if err != nil {
			return err
		}

		policy, err := loadPolicy(c, filename)
		if err != nil {
			return cli.Exit(err.Error(), cmd.ExitUsage)
		}

		logger := logutil.New(c)
		tree := dom.NewTree(c.StringSlice("root")...)
		rt := runtime.New(
			runtime.WithLogger(logger.WithField("file", filename)),
			runtime.WithDocument(tree),
			runtime.WithOutput(c.App.Writer),
			runtime.WithPolicy(policy),
			runtime.WithKeepAlive(c.Bool("keep-alive")))

		ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		err = rt.Run(ctx, source, filename)
		if c.Bool("dump-dom") {
			fmt.Fprint(c.App.Writer, tree.HTML())
		}
		if err != nil {
			return cmd.Report(c, source, err)
		}
		return nil
	}
}

func loadPolicy(c *cli.Context, filename string) (*capabilities.Policy, error) {
	if c.Bool("unsafe-allow-all") {
		return capabilities.AllowAll(), nil
	}

	dir := "."
	if filename != cmd.StdinFile {
		dir = filepath.Dir(filename)
	}
	policy, source, err := capabilities.LoadPolicy(dir)
	if err != nil {
		return nil, errors.Wrap(err, "load policy")
	}
	if source != "" {
		logutil.New(c).WithField("policy", source).Debug("loaded policy")
	}
	return policy, nil
}
