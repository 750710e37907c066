// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config binds chunk handle and projection parameters to CLI
// flags. Create instances with NewChunk and register flags with
// Chunk.RegisterFlags before parsing.
package config

import (
	"github.com/spf13/pflag"

	"github.com/solidcoredata/dcstore/chunk"
	"github.com/solidcoredata/dcstore/projection"
)

// ChunkFlags holds the flag names for one Chunk, letting a command that
// needs two chunks (dcstore's input and output) register each under a
// distinct prefix.
type ChunkFlags struct {
	Path   string
	Format string
	Schema string
}

// Chunk holds CLI flag values identifying one chunk and, for reads, the
// projection to apply to it.
type Chunk struct {
	Flags  ChunkFlags
	Path   string
	Format string
	Schema string
	Select string
}

// NewChunk returns a Chunk with flag names prefixed by prefix (e.g. "in" or
// "out" for dcstore's two sides; "" registers unprefixed names).
func NewChunk(prefix string) *Chunk {
	name := func(suffix string) string {
		if prefix == "" {
			return suffix
		}
		return prefix + "-" + suffix
	}
	return &Chunk{
		Flags: ChunkFlags{
			Path:   name("path"),
			Format: name("format"),
			Schema: name("schema"),
		},
	}
}

// RegisterFlags adds this chunk's flags to flags.
func (c *Chunk) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Path, c.Flags.Path, "",
		"chunk path (a file for textual/packed, a directory for columnar)")
	flags.StringVar(&c.Format, c.Flags.Format, "textual",
		"chunk format: textual, packed, or columnar")
	flags.StringVar(&c.Schema, c.Flags.Schema, "",
		"schema file path, required when format is columnar")
}

// Handle resolves this Chunk's flag values into a *chunk.Handle.
func (c *Chunk) Handle() (*chunk.Handle, error) {
	f, err := chunk.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return chunk.Open(c.Path, f, c.Schema), nil
}

// Projection parses Select into a projection tree, treating an empty
// string as "select everything".
func (c *Chunk) Projection() (*projection.Tree, error) {
	return projection.ParseDSL(c.Select)
}
