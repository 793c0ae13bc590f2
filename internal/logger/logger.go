// Package logger provides a configurable logger shared by the solver
// components.
//
// The root logger uses github.com/rs/zerolog with a console writer and
// is silenced while running tests.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if strings.HasSuffix(os.Args[0], ".test") {
		logger = zerolog.Nop()
	}
}

// SetOutput changes the output of the global logger.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Set overrides the global logger.
func Set(l zerolog.Logger) {
	logger = l
}

// Disable disables logging.
func Disable() {
	logger = zerolog.Nop()
}

// Logger returns a sublogger for a component.
func Logger() zerolog.Logger {
	return logger
}
