// Package doc contains the `iko doc` command.
package doc

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/cmd"
	"github.com/jeanlauliac/ikolang-sub001/pkg/help"
	"github.com/jeanlauliac/ikolang-sub001/pkg/stdlib"
)

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "doc",
		Usage:     "show language documentation",
		ArgsUsage: "[topic]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "index",
				Usage: "list every std function",
			},
		},
		Action: doc,
	}
}

func doc(c *cli.Context) error {
	if c.Bool("index") {
		r := stdlib.NewRegistry()
		stdlib.RegisterDefaults(r)
		fmt.Fprint(c.App.Writer, help.StdlibIndex(r))
		return nil
	}

	topic := c.Args().First()
	if topic == "" {
		fmt.Fprint(c.App.Writer, help.QUICKREF)
		return nil
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s\navailable topics: %s", err, strings.Join(help.TopicList, ", ")), cmd.ExitUsage)
	}
	fmt.Fprint(c.App.Writer, content)
	return nil
}
