package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revoverflow/walker/pkg/config"
	"github.com/revoverflow/walker/pkg/report"
	"github.com/revoverflow/walker/pkg/store"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from scan results",
		Long:  "Read structure results from a datastore and render them as text, human, json or sarif",
		RunE:  runReport,
	}
	cmd.Flags().String("datastore", "", "Datastore path (SQLite file or postgres:// URL)")
	cmd.Flags().String("format", config.FormatText, "Output format: text, human, json, sarif")
	cmd.Flags().String("color", report.ColorAuto, "Color output: auto, always, never")
	cmd.Flags().StringP("output", "o", "-", "Output file (- for stdout)")
	localFlag(cmd, "output")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	path := settings.Output.Datastore
	if store.IsMemoryPath(path) {
		return fmt.Errorf("--datastore is required")
	}
	if !store.IsPostgresURL(path) {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("datastore not found: %s", path)
		}
	}

	s, err := store.New(store.Config{Path: path})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	results, err := s.GetResults()
	if err != nil {
		return fmt.Errorf("loading results: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	w, f, closeFn, err := openOutput(outPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	err = writeStored(w, f, settings.Output.Format, settings.Output.Color, s, results)
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}
