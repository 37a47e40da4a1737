// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Setup points the standard logrus logger at stderr with the given level and
// format ("text" or "json"). Stdout is left for command output.
func Setup(level, format string) error {
	return configure(logrus.StandardLogger(), os.Stderr, level, format)
}

func configure(l *logrus.Logger, out io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	switch format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	l.SetOutput(out)
	l.SetLevel(lvl)
	return nil
}
