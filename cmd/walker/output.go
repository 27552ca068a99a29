package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/revoverflow/walker/pkg/config"
	"github.com/revoverflow/walker/pkg/report"
	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/types"
)

// openOutput returns the destination for path; "-" is stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, *os.File, func() error, error) {
	if path == "" || path == "-" {
		f, _ := stdout.(*os.File)
		return stdout, f, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating output %s: %w", path, err)
	}
	return f, f, f.Close, nil
}

// writeStored renders stored results in one of the store-backed formats.
func writeStored(w io.Writer, f *os.File, format, colorMode string, s store.Store, results []*types.StoredResult) error {
	structures, err := s.GetStructures()
	if err != nil {
		return fmt.Errorf("loading structures: %w", err)
	}

	switch format {
	case config.FormatJSON:
		return report.WriteJSON(w, results)
	case config.FormatSARIF:
		return report.WriteSARIF(w, version, structures, results)
	case config.FormatHuman:
		colored, err := report.ColorEnabled(colorMode, f)
		if err != nil {
			return err
		}
		return report.NewHumanWriter(structures, colored).Write(w, results)
	case config.FormatText:
		return report.WriteBlocks(w, storedBlocks(structures, results))
	}
	return fmt.Errorf("unknown format: %s", format)
}

// storedBlocks groups stored results per (buffer, structure), keeping the
// store order.
func storedBlocks(structures []store.StructureRecord, results []*types.StoredResult) []report.Block {
	order := make(map[string]int, len(structures))
	for i, s := range structures {
		order[s.ID] = i
	}

	type key struct {
		buffer    types.BufferID
		structure string
	}
	index := make(map[key]int)
	var blocks []report.Block
	for _, r := range results {
		k := key{r.BufferID, r.StructureID}
		i, ok := index[k]
		if !ok {
			i = len(blocks)
			index[k] = i
			src := r.Source
			if src == "" {
				src = r.BufferID.Short()
			}
			blocks = append(blocks, report.Block{Source: src, Structure: r.StructureID})
		}
		res := r.Result
		res.Data = nil
		blocks[i].Results = append(blocks[i].Results, res)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Source != blocks[j].Source {
			return blocks[i].Source < blocks[j].Source
		}
		return order[blocks[i].Structure] < order[blocks[j].Structure]
	})
	return blocks
}
