// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dcstore converts a document chunk between the textual, packed
// and columnar formats, optionally applying a projection during the read.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solidcoredata/dcstore/config"
	"github.com/solidcoredata/dcstore/internal/applog"
	"github.com/solidcoredata/dcstore/internal/start"
)

func main() {
	in := config.NewChunk("in")
	out := config.NewChunk("out")
	logCfg := applog.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "dcstore",
		Short: "Convert a document chunk between textual, packed and columnar formats",
		Long: `dcstore reads every record from one chunk, applies an optional projection,
and writes the result to another chunk. Input and output may use different
formats, letting a single invocation transcode textual, packed and columnar
chunks in either direction.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return err
			}
			logger := slog.New(handler)
			return start.Start(cmd.Context(), 10*time.Second, func(ctx context.Context) error {
				return run(ctx, logger, in, out)
			})
		},
	}

	in.RegisterFlags(rootCmd.Flags())
	out.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&in.Select, "select", "",
		"projection DSL applied to the input chunk before writing (empty selects everything)")
	logCfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, in, out *config.Chunk) error {
	inHandle, err := in.Handle()
	if err != nil {
		return err
	}
	outHandle, err := out.Handle()
	if err != nil {
		return err
	}
	proj, err := in.Projection()
	if err != nil {
		return err
	}

	logger.Info("reading chunk", "path", in.Path, "format", in.Format)
	docs, err := inHandle.Read(ctx, proj)
	if err != nil {
		return err
	}
	logger.Info("read complete", "records", len(docs))

	logger.Info("writing chunk", "path", out.Path, "format", out.Format)
	if err := outHandle.Write(ctx, docs); err != nil {
		return err
	}
	logger.Info("write complete", "records", len(docs))
	return nil
}
