// Package cli provides the command-line interface for editable.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CommandLineOpts struct {
	Version bool `short:"v" long:"version" description:"Show the program version"`

	ServeCommand   ServeCommand   `command:"serve" description:"serve editable pages over HTTP"`
	CheckCommand   CheckCommand   `command:"check" description:"check pages for configuration mistakes"`
	VersionCommand VersionCommand `command:"version" description:"print the version"`
}

var Opts CommandLineOpts

// setupLogger points the global logger at stderr: human readable on a
// terminal, JSON otherwise.
func setupLogger(lvl zerolog.Level) zerolog.Logger {
	var w io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return log.Logger
}
