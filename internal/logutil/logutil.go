// Package logutil configures loggers from a cli context.
package logutil

import (
	"io"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// key with random component to avoid collision
const key = "iko.internal.logutil:q8#Lz{0v]Tm"

// New returns the logger bound to the cli context, creating it on first
// use.
func New(c *cli.Context) log.Logger {
	if logger, ok := c.App.Metadata[key].(log.Logger); ok {
		return logger
	}

	logger := log.New(
		WithLevel(c),
		WithFormat(c),
		log.WithWriter(c.App.ErrWriter))

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[key] = logger
	return logger
}

// WithLevel returns a log.Option that configures a logger's level. The
// `none` format silences everything below fatal.
func WithLevel(c *cli.Context) (opt log.Option) {
	var level = log.FatalLevel
	defer func() {
		opt = log.WithLevel(level)
	}()

	if c.String("logfmt") == "none" {
		return
	}

	switch c.String("loglvl") {
	case "trace", "t":
		level = log.TraceLevel
	case "debug", "d":
		level = log.DebugLevel
	case "info", "i":
		level = log.InfoLevel
	case "warn", "warning", "w":
		level = log.WarnLevel
	case "error", "err", "e":
		level = log.ErrorLevel
	case "fatal", "f":
		level = log.FatalLevel
	default:
		level = log.InfoLevel
	}

	return
}

// WithFormat returns an option that configures a logger's format.
func WithFormat(c *cli.Context) log.Option {
	var fmt logrus.Formatter

	switch c.String("logfmt") {
	case "none":
		fmt = new(logrus.TextFormatter)
	case "json":
		fmt = new(logrus.JSONFormatter)
	default:
		fmt = &logrus.TextFormatter{DisableTimestamp: true}
	}

	return log.WithFormatter(fmt)
}

// Discard returns a logger that writes nothing. It is the default for
// library code run without a cli.
func Discard() log.Logger {
	return log.New(log.WithLevel(log.FatalLevel), log.WithWriter(io.Discard))
}
