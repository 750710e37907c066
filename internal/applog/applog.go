// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package applog binds structured logging flags to a log/slog.Handler:
// a level ("error"/"warn"/"info"/"debug") and a format ("json"/"text").
package applog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format is the wire shape slog writes records in.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var (
	ErrUnknownLevel  = errors.New("applog: unknown log level")
	ErrUnknownFormat = errors.New("applog: unknown log format")
)

// Flags holds the flag names for log configuration.
type Flags struct {
	Level  string
	Format string
}

// Config holds CLI flag values for log configuration. Create instances
// with NewConfig and register flags with RegisterFlags before parsing.
type Config struct {
	Flags  Flags
	Level  string
	Format string
}

func NewConfig() *Config {
	return &Config{Flags: Flags{Level: "log-level", Format: "log-format"}}
}

func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, "info", "log level: error, warn, info, or debug")
	flags.StringVar(&c.Format, c.Flags.Format, "text", "log format: json or text")
}

// NewHandler builds a slog.Handler writing to w per c's level and format.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText, "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}
