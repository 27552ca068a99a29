package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/revoverflow/walker/pkg/logging"
	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/scanner"
	"github.com/revoverflow/walker/pkg/serve"
	"github.com/revoverflow/walker/pkg/structure"
)

var serveStructurePath string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as a streaming scan server",
		Long: `Run Walker as a long-lived streaming server that accepts scan requests
via stdin and writes results to stdout using NDJSON format.

The process loads structures once at startup and processes requests until
stdin closes or SIGTERM is received. A request may carry its own structure
descriptor instead.`,
		RunE: runServe,
	}
	cmd.Flags().StringVarP(&serveStructurePath, "structure", "s", structure.BuiltinPrefix, "Structure descriptor file, builtin or builtin:<id>")
	cmd.Flags().Int("workers", 0, "Goroutines per buffer (0 or 1 scans sequentially)")
	cmd.Flags().String("byte-order", "little", "Byte order of numeric and pointer fields: little, big")
	cmd.Flags().Bool("prefilter", true, "Skip structures whose byte anchors are absent from a buffer")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	diag := logging.NewDiagnostics(logger)

	structures, err := structure.NewLoader(structure.WithDiagnostics(diag)).Resolve(serveStructurePath)
	if err != nil {
		return fmt.Errorf("loading structures: %w", err)
	}

	byteOrder, err := matcher.ParseByteOrder(settings.Scan.ByteOrder)
	if err != nil {
		return err
	}

	coreConfig := scanner.CoreConfig{
		ByteOrder:   byteOrder,
		Workers:     settings.Scan.Workers,
		Prefilter:   settings.Scan.Prefilter,
		Diagnostics: diag,
		Logger:      logging.DebugLogger{Logger: logger},
	}
	defaults := coreConfig
	defaults.Structures = structures
	core, err := scanner.NewCoreWithConfig(defaults)
	if err != nil {
		return err
	}
	defer core.Close()

	// Set up signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create and run server
	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout(),
		serve.WithLogger(logger),
		serve.WithCoreConfig(coreConfig),
	)
	return srv.Run(ctx)
}
