// Package walker finds structure layouts in raw byte buffers.
//
// A structure is an ordered list of typed fields, each carrying criteria
// such as "uint32 equal to 0xfeedface" or "8 bytes matching 4D 5A ?? ??".
// Walker slides the layout over a buffer one byte at a time and reports
// every offset where all fields match.
//
// # Basic Usage
//
// Create a scanner with the builtin layouts and scan a buffer:
//
//	scanner, err := walker.NewScanner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scanner.Close()
//
//	results, err := scanner.Scan(dump)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range results {
//	    fmt.Printf("%s at 0x%x\n", r.StructureID, r.Offset)
//	}
//
// # Custom Layouts
//
// Load a JSON or YAML descriptor:
//
//	structures, err := walker.LoadStructuresFromFile("layout.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scanner, err := walker.NewScanner(walker.WithStructures(structures))
package walker

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/revoverflow/walker/pkg/scanner"
	"github.com/revoverflow/walker/pkg/structure"
	"github.com/revoverflow/walker/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/revoverflow/walker" without subpackages.
type (
	// Result is one full-structure match inside a buffer.
	Result = types.Result

	// Structure is an ordered field layout.
	Structure = types.Structure

	// Field is one typed slot of a structure.
	Field = types.Field

	// Criterion is one predicate attached to a field.
	Criterion = types.Criterion

	// Diagnostics receives skipped descriptor entries and pattern mismatches.
	Diagnostics = types.Diagnostics
)

// Scanner applies a fixed set of structures to buffers.
type Scanner struct {
	core   *scanner.Core
	config *scannerConfig
	mu     sync.RWMutex
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	structures  []*types.Structure
	byteOrder   binary.ByteOrder
	workers     int
	prefilter   bool
	diagnostics types.Diagnostics
}

// Option configures a Scanner.
type Option func(*scannerConfig)

// WithStructures uses custom structures instead of the builtin layouts.
func WithStructures(structures []*Structure) Option {
	return func(c *scannerConfig) {
		c.structures = structures
	}
}

// WithByteOrder sets how numeric and pointer fields are decoded.
// Default is little endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *scannerConfig) {
		c.byteOrder = order
	}
}

// WithWorkers splits each buffer's offsets across n goroutines.
// Results are identical to a sequential scan.
func WithWorkers(n int) Option {
	return func(c *scannerConfig) {
		c.workers = n
	}
}

// WithoutPrefilter scans every structure even when its byte anchors are
// absent from the buffer.
func WithoutPrefilter() Option {
	return func(c *scannerConfig) {
		c.prefilter = false
	}
}

// WithDiagnostics receives pattern length mismatches found while scanning.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *scannerConfig) {
		c.diagnostics = d
	}
}

// NewScanner creates a new Scanner with the given options.
//
// By default, the scanner:
//   - Uses every builtin structure
//   - Decodes little endian
//   - Scans sequentially with the anchor prefilter enabled
func NewScanner(opts ...Option) (*Scanner, error) {
	config := &scannerConfig{
		prefilter: true,
	}

	for _, opt := range opts {
		opt(config)
	}

	// Load structures if not provided
	if config.structures == nil {
		structures, err := scanner.GetBuiltinStructures()
		if err != nil {
			return nil, fmt.Errorf("loading builtin structures: %w", err)
		}
		config.structures = structures
	}

	core, err := scanner.NewCoreWithConfig(scanner.CoreConfig{
		Structures:  config.structures,
		ByteOrder:   config.byteOrder,
		Workers:     config.workers,
		Prefilter:   config.prefilter,
		Diagnostics: config.diagnostics,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	return &Scanner{core: core, config: config}, nil
}

// Scan returns every match of every structure in content, grouped by
// structure and ascending by offset. Result data is copied out of content.
func (s *Scanner) Scan(content []byte) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.core.Scan(content, "")
	if err != nil {
		return nil, err
	}
	for i := range r.Results {
		r.Results[i] = r.Results[i].Detach()
	}
	return r.Results, nil
}

// ScanFile reads and scans a file. A file that cannot be read is an
// *types.InputError and nothing is scanned.
func (s *Scanner) ScanFile(path string) ([]Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.InputError{Source: path, Err: err}
	}
	return s.Scan(content)
}

// Close releases scanner resources.
// Always call Close when done with the scanner.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.core.Close()
}

// StructureCount returns the number of structures applied to each buffer.
func (s *Scanner) StructureCount() int {
	return len(s.core.Structures())
}

// Structures returns a copy of the applied structures.
func (s *Scanner) Structures() []*Structure {
	structures := make([]*Structure, len(s.core.Structures()))
	copy(structures, s.core.Structures())
	return structures
}

// LoadStructuresFromFile loads structures from a JSON or YAML descriptor.
// Malformed fields and criteria are skipped and reported to diag, which may
// be nil.
func LoadStructuresFromFile(path string, diag Diagnostics) ([]*Structure, error) {
	return structure.NewLoader(structure.WithDiagnostics(diag)).LoadFile(path)
}

// LoadStructures parses a descriptor document. id names the structure when
// the document is a bare field list.
func LoadStructures(data []byte, id string, diag Diagnostics) ([]*Structure, error) {
	return structure.NewLoader(structure.WithDiagnostics(diag)).Load(data, id)
}

// LoadBuiltinStructures returns every embedded structure.
func LoadBuiltinStructures() ([]*Structure, error) {
	return scanner.GetBuiltinStructures()
}
