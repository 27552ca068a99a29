package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/revoverflow/walker/pkg/logging"
	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/structure"
	"github.com/revoverflow/walker/pkg/types"
)

var (
	structuresPath   string
	structuresFormat string
)

// structureInfo is the listing view of a structure.
type structureInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Size        int      `json:"size"`
	Fields      []string `json:"fields"`
}

func newStructuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structures",
		Short: "Manage structure layouts",
		Long:  "Commands for listing and inspecting structure layouts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available structures",
		Long:  "Display builtin structures, or the structures of a descriptor, with their sizes",
		RunE:  runStructuresList,
	}
	list.Flags().StringVarP(&structuresPath, "structure", "s", structure.BuiltinPrefix, "Structure descriptor file, builtin or builtin:<id>")
	list.Flags().StringVar(&structuresFormat, "format", "table", "Output format: table, json")
	localFlag(list, "format")

	cmd.AddCommand(list)
	return cmd
}

func runStructuresList(cmd *cobra.Command, args []string) error {
	loader := structure.NewLoader(structure.WithDiagnostics(logging.NewDiagnostics(logger)))

	structures, err := loader.Resolve(structuresPath)
	if err != nil {
		return fmt.Errorf("loading structures from %s: %w", structuresPath, err)
	}

	// Output based on format
	switch structuresFormat {
	case "json":
		return outputStructuresJSON(cmd, structures)
	case "table":
		return outputStructuresTable(cmd, structures)
	default:
		return fmt.Errorf("unknown output format: %s", structuresFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func describe(s *types.Structure) structureInfo {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.String()
	}
	return structureInfo{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Size:        matcher.StructureSize(s.Fields),
		Fields:      fields,
	}
}

func outputStructuresJSON(cmd *cobra.Command, structures []*types.Structure) error {
	infos := make([]structureInfo, len(structures))
	for i, s := range structures {
		infos[i] = describe(s)
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(infos)
}

func outputStructuresTable(cmd *cobra.Command, structures []*types.Structure) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tFields\tSize\n")
	fmt.Fprintf(w, "--\t----\t------\t----\n")

	for _, s := range structures {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.Name, len(s.Fields), matcher.StructureSize(s.Fields))
	}

	return nil
}
