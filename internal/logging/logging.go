// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger summify writes to.
//
// The terminal belongs to the chat UI, so logs go to a file
// (~/.summify/summify.log unless configured). Setting the file to "-"
// sends human-readable output to stderr instead, which is handy with
// the plain REPL.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/summify-tui/internal/config"
)

// Stderr selects console output on stderr instead of a log file.
const Stderr = "-"

// ParseLevel converts a config level string to a zerolog level.
// An empty string means info.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// New opens the configured log destination and returns a logger writing to it.
// The returned closer releases the file; it is a no-op for stderr.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	if cfg.File == Stderr {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return NewWithWriter(w, lvl), nopCloser{}, nil
	}

	path := cfg.File
	if path == "" {
		path, err = config.DefaultLogPath()
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), nopCloser{}, errors.Wrap(err, "create log directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, errors.Wrapf(err, "open log file %s", path)
	}
	return NewWithWriter(f, lvl), f, nil
}

// NewWithWriter returns a timestamped logger at lvl writing to w.
func NewWithWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("app", "summify").Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
