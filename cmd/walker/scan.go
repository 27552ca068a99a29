package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/revoverflow/walker/pkg/config"
	"github.com/revoverflow/walker/pkg/logging"
	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/report"
	"github.com/revoverflow/walker/pkg/scanner"
	"github.com/revoverflow/walker/pkg/source"
	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/structure"
	"github.com/revoverflow/walker/pkg/types"
)

var (
	scanTargets           []string
	scanStructurePath     string
	scanStructuresInclude string
	scanStructuresExclude string
	scanIncremental       bool
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan buffers for structure layouts",
		Long: `Scan files, directories, archives, packet captures or Azure blobs for
every offset where a structure layout matches.

The structure is a JSON or YAML descriptor file, "builtin" for every
embedded layout, or "builtin:<id>" for one of them.`,
		Example: `  walker scan -t dump.bin -s layout.json
  walker scan -t ./dumps -s builtin:elf64_header -o - --format human
  walker scan -t azblob://dumps/host1/ -s layout.yml --datastore walker.db`,
		RunE: runScan,
	}

	cmd.Flags().StringArrayVarP(&scanTargets, "target", "t", nil, "Target to scan: file, directory, archive, pcap or azblob://container/prefix (repeatable)")
	cmd.Flags().StringVarP(&scanStructurePath, "structure", "s", "", "Structure descriptor file, builtin or builtin:<id>")
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath, "Output file (- for stdout)")
	cmd.Flags().String("format", config.FormatText, "Output format: text, human, json, sarif")
	cmd.Flags().String("datastore", "", "Datastore path (SQLite file or postgres:// URL, default in-memory)")
	cmd.Flags().String("color", report.ColorAuto, "Color mode for human output: auto, always, never")
	cmd.Flags().Int("workers", 0, "Goroutines per buffer (0 or 1 scans sequentially)")
	cmd.Flags().String("byte-order", "little", "Byte order of numeric and pointer fields: little, big")
	cmd.Flags().Bool("prefilter", true, "Skip structures whose byte anchors are absent from a buffer")
	cmd.Flags().Int64("max-file-size", 0, "Maximum buffer size in bytes (0 for no limit)")
	cmd.Flags().Bool("include-hidden", false, "Include hidden files and directories")
	cmd.Flags().Bool("follow-symlinks", false, "Follow symbolic links when walking directories")
	cmd.Flags().Bool("extract-archives", true, "Scan zip and 7z members instead of the archive bytes")
	cmd.Flags().StringVar(&scanStructuresInclude, "structures-include", "", "Include structures matching regex pattern (comma-separated)")
	cmd.Flags().StringVar(&scanStructuresExclude, "structures-exclude", "", "Exclude structures matching regex pattern (comma-separated)")
	cmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip buffers already present in the datastore")

	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("structure")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	diag := logging.NewDiagnostics(logger)

	// Load structures
	structures, err := loadStructures(scanStructurePath, scanStructuresInclude, scanStructuresExclude, diag)
	if err != nil {
		return fmt.Errorf("loading structures: %w", err)
	}

	byteOrder, err := matcher.ParseByteOrder(settings.Scan.ByteOrder)
	if err != nil {
		return err
	}

	// Open every target before scanning so an unreadable one aborts early
	enumerator, err := source.OpenAll(scanTargets, source.Options{
		Config: source.Config{
			MaxFileSize:     settings.Scan.MaxFileSize,
			IncludeHidden:   settings.Scan.IncludeHidden,
			FollowSymlinks:  settings.Scan.FollowSymlinks,
			ExtractArchives: settings.Scan.ExtractArchives,
		},
		AzureConnectionString: settings.Azure.ConnectionString,
	})
	if err != nil {
		return err
	}

	// Create store
	s, err := store.New(store.Config{Path: settings.Output.Datastore})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	core, err := scanner.NewCoreWithConfig(scanner.CoreConfig{
		Structures:  structures,
		ByteOrder:   byteOrder,
		Workers:     settings.Scan.Workers,
		Prefilter:   settings.Scan.Prefilter,
		Store:       s,
		Diagnostics: diag,
		Logger:      logging.DebugLogger{Logger: logger},
	})
	if err != nil {
		s.Close()
		return err
	}
	defer core.Close()

	logger.WithFields(logrus.Fields{
		"scan_id":    core.ScanID(),
		"structures": len(core.Structures()),
		"targets":    len(scanTargets),
	}).Info("scan started")

	// Scan
	var (
		mu       sync.Mutex
		blocks   []report.Block
		seen     []types.BufferID
		buffers  int
		skipped  int
		total    int
		position = structurePositions(core.Structures())
	)

	err = enumerator.Enumerate(cmd.Context(), func(content []byte, id types.BufferID, prov types.Provenance) error {
		mu.Lock()
		defer mu.Unlock()

		// Check for incremental scanning
		if scanIncremental {
			exists, err := s.BufferExists(id)
			if err != nil {
				return fmt.Errorf("checking buffer: %w", err)
			}
			if exists {
				skipped++
				return nil
			}
		}

		results, err := core.ScanBuffer(content, id, prov)
		if err != nil {
			return err
		}
		buffers++
		total += len(results)
		seen = append(seen, id)

		src := id.Short()
		if prov != nil {
			src = prov.Path()
		}
		blocks = append(blocks, bufferBlocks(src, core.Structures(), results)...)

		logger.WithFields(logrus.Fields{
			"source":  src,
			"size":    len(content),
			"results": len(results),
		}).Debug("buffer scanned")
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan aborted: %w", err)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Source != blocks[j].Source {
			return blocks[i].Source < blocks[j].Source
		}
		return position[blocks[i].Structure] < position[blocks[j].Structure]
	})

	if err := writeScanOutput(cmd, s, blocks, seen); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"buffers": buffers,
		"skipped": skipped,
		"results": total,
		"output":  settings.Output.Path,
	}).Info("scan complete")
	return nil
}

// loadStructures resolves a structure reference and applies the include and
// exclude filters.
func loadStructures(ref, include, exclude string, diag types.Diagnostics) ([]*types.Structure, error) {
	loader := structure.NewLoader(structure.WithDiagnostics(diag))

	structures, err := loader.Resolve(ref)
	if err != nil {
		return nil, err
	}

	if include != "" || exclude != "" {
		structures, err = structure.Filter(structures, structure.FilterConfig{
			Include: structure.ParsePatterns(include),
			Exclude: structure.ParsePatterns(exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering structures: %w", err)
		}
	}
	return structures, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func structurePositions(structures []*types.Structure) map[string]int {
	pos := make(map[string]int, len(structures))
	for i, s := range structures {
		pos[s.ID] = i
	}
	return pos
}

// bufferBlocks splits one buffer's results into a block per structure,
// including structures that found nothing. Data views are dropped since
// they alias the buffer.
func bufferBlocks(src string, structures []*types.Structure, results []types.Result) []report.Block {
	blocks := make([]report.Block, len(structures))
	index := make(map[string]int, len(structures))
	for i, s := range structures {
		blocks[i] = report.Block{Source: src, Structure: s.ID}
		index[s.ID] = i
	}
	for _, r := range results {
		r.Data = nil
		i := index[r.StructureID]
		blocks[i].Results = append(blocks[i].Results, r)
	}
	return blocks
}

func writeScanOutput(cmd *cobra.Command, s store.Store, blocks []report.Block, seen []types.BufferID) error {
	w, f, closeFn, err := openOutput(settings.Output.Path, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if settings.Output.Format == config.FormatText {
		err = report.WriteBlocks(w, blocks)
	} else {
		var results []*types.StoredResult
		for _, id := range seen {
			rs, gerr := s.GetBufferResults(id)
			if gerr != nil {
				closeFn()
				return fmt.Errorf("loading results: %w", gerr)
			}
			results = append(results, rs...)
		}
		err = writeStored(w, f, settings.Output.Format, settings.Output.Color, s, results)
	}

	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
