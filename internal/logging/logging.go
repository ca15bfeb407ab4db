// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the logrus logger shared by the comply commands.
//
// The TUI owns the terminal, so it logs to a file; the plain CLI commands log
// to stderr. Components accept a logrus.FieldLogger and attach their own
// fields.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Formats accepted by Config.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects the level, format and destination of log output.
type Config struct {
	Level  string
	Format string

	// File is the log file path. Empty means Output (or stderr).
	File string

	// Output is used when File is empty.
	Output io.Writer
}

// New creates a logger from cfg. The returned closer releases the log file
// and is never nil.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   cfg.File != "",
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return nil, nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	case cfg.Output != nil:
		logger.SetOutput(cfg.Output)
	default:
		logger.SetOutput(os.Stderr)
	}

	return logger, closer, nil
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	if strings.TrimSpace(s) == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Nop returns a logger that discards everything.
func Nop() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
