package logutil_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/jeanlauliac/ikolang-sub001/internal/logutil"
)

func logWith(t *testing.T, args ...string) string {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.App{
		Name:      "iko",
		ErrWriter: &buf,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "logfmt", Value: "text"},
			&cli.StringFlag{Name: "loglvl", Value: "warn"},
		},
		Action: func(c *cli.Context) error {
			logger := logutil.New(c)
			assert.Equal(t, logger, logutil.New(c), "logger is cached per app")

			logger.WithField("task", 1).Info("ran task")
			logger.Warn("slow timer")
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"iko"}, args...)))
	return buf.String()
}

func TestLevels(t *testing.T) {
	t.Parallel()

	out := logWith(t)
	assert.Contains(t, out, "slow timer")
	assert.NotContains(t, out, "ran task")

	out = logWith(t, "--loglvl", "debug")
	assert.Contains(t, out, "ran task")
	assert.Contains(t, out, "task=1")
}

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.Contains(t, logWith(t, "--logfmt", "json", "--loglvl", "info"), `"task":1`)
	assert.Empty(t, logWith(t, "--logfmt", "none", "--loglvl", "trace"))
}
