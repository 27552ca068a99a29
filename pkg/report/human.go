package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/types"
)

// maxDumpBytes caps the hex dump printed per result.
const maxDumpBytes = 64

// HumanWriter prints stored results for reading in a terminal.
type HumanWriter struct {
	styles     *styles
	structures map[string]store.StructureRecord
}

// NewHumanWriter creates a writer. structures supplies display names and
// may be nil.
func NewHumanWriter(structures []store.StructureRecord, colored bool) *HumanWriter {
	byID := make(map[string]store.StructureRecord, len(structures))
	for _, s := range structures {
		byID[s.ID] = s
	}
	return &HumanWriter{styles: newStyles(colored), structures: byID}
}

// Write renders results in order followed by a per-structure summary.
func (h *HumanWriter) Write(w io.Writer, results []*types.StoredResult) error {
	s := h.styles
	total := len(results)
	counts := make(map[string]int)
	var order []string

	for i, r := range results {
		if _, seen := counts[r.StructureID]; !seen {
			order = append(order, r.StructureID)
		}
		counts[r.StructureID]++

		fmt.Fprintf(w, "%s (%s %s)\n",
			s.resultHeading.Sprintf("Result %d/%d", i+1, total),
			s.heading.Sprint("buffer"),
			s.id.Sprint(r.BufferID.Short()))

		name := r.StructureID
		if rec, ok := h.structures[r.StructureID]; ok && rec.Name != "" {
			name = fmt.Sprintf("%s (%s)", rec.Name, r.StructureID)
		}
		fmt.Fprintf(w, "%s %s\n", s.heading.Sprint("Structure:"), s.structure.Sprint(name))
		if r.Source != "" {
			fmt.Fprintf(w, "%s %s\n", s.heading.Sprint("Source:"), s.metadata.Sprint(r.Source))
		}
		fmt.Fprintf(w, "%s %s\n", s.heading.Sprint("Offset:"), s.metadata.Sprintf("0x%x (%d bytes)", r.Offset, r.Size))

		if len(r.Data) > 0 {
			data := r.Data
			truncated := false
			if len(data) > maxDumpBytes {
				data = data[:maxDumpBytes]
				truncated = true
			}
			for _, line := range strings.Split(strings.TrimRight(hex.Dump(data), "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", s.data.Sprint(line))
			}
			if truncated {
				fmt.Fprintf(w, "    ... %d more bytes\n", len(r.Data)-maxDumpBytes)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n", s.heading.Sprintf("%d results", total))
	for _, id := range order {
		fmt.Fprintf(w, "  %s %d\n", s.structure.Sprint(id), counts[id])
	}
	return nil
}
