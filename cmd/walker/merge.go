package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revoverflow/walker/pkg/store"
)

var (
	mergeOutput string
)

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <source1.db> <source2.db> [source3.db...]",
		Short: "Merge multiple Walker datastores",
		Long: `Merge multiple Walker SQLite datastores into a single output datastore.

This is useful for combining results from scans run on different hosts or
against different dumps.

Deduplication is automatic - duplicate buffers, structures and results
are only stored once in the merged datastore.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runMerge,
	}
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output datastore path")
	localFlag(cmd, "output")
	return cmd
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merge complete:\n")
	fmt.Fprintf(out, "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(out, "  Scans merged: %d\n", stats.ScansMerged)
	fmt.Fprintf(out, "  Buffers merged: %d\n", stats.BuffersMerged)
	fmt.Fprintf(out, "  Structures merged: %d\n", stats.StructuresMerged)
	fmt.Fprintf(out, "  Results merged: %d\n", stats.ResultsMerged)
	fmt.Fprintf(out, "  Provenance merged: %d\n", stats.ProvenanceMerged)
	fmt.Fprintf(out, "Output: %s\n", mergeOutput)

	return nil
}
