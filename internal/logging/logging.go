// Package logging builds the process logger.
package logging

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger writing to stderr at the given level. A format
// of "json" selects logrus' JSON formatter; anything else selects the text
// formatter.
func NewLogger(level logrus.Level, format string) *logrus.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(out io.Writer, level logrus.Level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard returns a logger that discards everything.
func Discard() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}
