package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/ssrwatch"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// consoleWriter is human readable on a terminal and JSON otherwise.
func consoleWriter() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	return os.Stderr
}

// newLogger returns the run logger and a function releasing the log file.
// Records go to stderr and, when configured, are appended to the log file.
func newLogger(cfg *ssrwatch.Config) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if *verbose {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{consoleWriter()}
	closer := func() error { return nil }
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("cannot open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Str("service", "ssrwatch").Logger().
		Level(level)
	return logger, closer, nil
}

// toolLogger is the logger of commands that run without a configuration.
func toolLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(consoleWriter()).With().Timestamp().Logger().Level(level)
}
