// Package repl contains the `iko repl` command.
package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/internal/logutil"
	"github.com/jeanlauliac/ikolang-sub001/pkg/capabilities"
	"github.com/jeanlauliac/ikolang-sub001/pkg/dom"
	"github.com/jeanlauliac/ikolang-sub001/pkg/evaluator"
	"github.com/jeanlauliac/ikolang-sub001/pkg/parser"
	"github.com/jeanlauliac/ikolang-sub001/pkg/runtime"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

const (
	promptMain = "iko> "
	promptCont = "...> "
)

const banner = `iko repl. Statements run as they are entered.
:dom prints the document, :wait runs pending timers, :quit exits.`

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "history",
		Usage:   "read and write line history at `path`",
		Value:   "~/.iko_history",
		EnvVars: []string{"IKO_HISTORY"},
	},
	&cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "suppress the banner",
	},
}

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "start an interactive session",
		Flags:  flags,
		Action: run,
	}
}

func run(c *cli.Context) error {
	if !c.Bool("quiet") {
		fmt.Fprintln(c.App.Writer, banner)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return cli.Exit(errors.Wrap(err, "getwd").Error(), cmd.ExitUsage)
	}
	policy, _, err := capabilities.LoadPolicy(cwd)
	if err != nil {
		return cli.Exit(err.Error(), cmd.ExitUsage)
	}

	tree := dom.NewTree(stdlib.DefaultRoot)
	s := runtime.New(
		runtime.WithLogger(logutil.New(c)),
		runtime.WithDocument(tree),
		runtime.WithOutput(c.App.Writer),
		runtime.WithPolicy(policy)).NewSession()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	hist := historyPath(c.String("history"))
	if f, err := os.Open(hist); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(hist); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(c.App.Writer)
			return nil
		}

		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit", ":q":
			return nil
		case ":dom":
			fmt.Fprint(c.App.Writer, tree.HTML())
			continue
		case ":wait":
			if err := s.Wait(c.Context); err != nil {
				printError(c, code, err)
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		v, err := s.Exec(code)
		if err != nil {
			printError(c, code, err)
			continue
		}
		if v != nil {
			fmt.Fprintln(c.App.Writer, evaluator.Inspect(v))
		}
	}
}

// readStatement keeps prompting with the continuation prompt while the
// input so far is an incomplete statement. It reports false at EOF.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false // io.EOF or a closed terminal
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseStatement(src, runtime.ReplFile); parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

func printError(c *cli.Context, source string, err error) {
	diags := runtime.Diagnostics(err)
	if len(diags) == 0 {
		fmt.Fprintln(c.App.ErrWriter, err)
		return
	}
	cmd.PrintDiagnostics(c.App.ErrWriter, source, diags, true)
}

func historyPath(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = strings.Replace(p, "~", home, 1)
		}
	}
	return filepath.Clean(p)
}
