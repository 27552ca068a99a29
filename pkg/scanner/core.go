package scanner

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/prefilter"
	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/structure"
	"github.com/revoverflow/walker/pkg/types"
)

var (
	// cachedBuiltin holds the builtin structures loaded once per process
	cachedBuiltin    []*types.Structure
	cachedBuiltinErr error
	cacheOnce        sync.Once
)

func loadBuiltinCached() ([]*types.Structure, error) {
	cacheOnce.Do(func() {
		cachedBuiltin, cachedBuiltinErr = structure.NewLoader().LoadBuiltin()
	})
	return cachedBuiltin, cachedBuiltinErr
}

// GetBuiltinStructures returns the embedded structures (cached).
func GetBuiltinStructures() ([]*types.Structure, error) {
	return loadBuiltinCached()
}

// CoreConfig configures a Core.
type CoreConfig struct {
	Structures []*types.Structure

	// ByteOrder for numeric and pointer fields; nil means little endian.
	ByteOrder binary.ByteOrder

	// Workers > 1 splits each buffer's offsets across goroutines.
	Workers int

	// Prefilter skips structures whose byte anchors are absent.
	Prefilter bool

	// Store receives scans, buffers and results; nil uses an in-memory store.
	Store store.Store

	Diagnostics types.Diagnostics
	Logger      DebugLogger
}

// Core applies a set of structures to buffers and records the results.
type Core struct {
	structures []*types.Structure
	matcher    *matcher.Matcher
	prefilter  *prefilter.Prefilter
	store      store.Store
	scanID     string
	workers    int
	diag       types.Diagnostics
	logger     DebugLogger
}

// NewCore creates a Core from a descriptor document.
// descriptor can be:
// - "" or "builtin" to load the builtin structures (cached)
// - a JSON or YAML structure descriptor
func NewCore(descriptor string, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	var structures []*types.Structure
	if descriptor == "" || descriptor == structure.BuiltinPrefix {
		logger.Log("Loading builtin structures (cached)...")
		var err error
		structures, err = loadBuiltinCached()
		if err != nil {
			logger.Log("loadBuiltinCached failed: %v", err)
			return nil, err
		}
	} else {
		var err error
		structures, err = structure.NewLoader().Load([]byte(descriptor), "inline")
		if err != nil {
			logger.Log("descriptor parse failed: %v", err)
			return nil, err
		}
	}
	logger.Log("Loaded %d structures", len(structures))

	return NewCoreWithConfig(CoreConfig{
		Structures: structures,
		Prefilter:  true,
		Logger:     logger,
	})
}

// NewCoreWithConfig creates a Core and registers a new scan in its store.
func NewCoreWithConfig(cfg CoreConfig) (*Core, error) {
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger{}
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = types.NoopDiagnostics{}
	}
	structures, err := usable(cfg.Structures, cfg.Diagnostics)
	if err != nil {
		return nil, err
	}

	s := cfg.Store
	if s == nil {
		s, err = store.New(store.Config{Path: ":memory:"})
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
	}

	c := &Core{
		structures: structures,
		matcher:    matcher.New(matcher.Config{ByteOrder: cfg.ByteOrder}),
		store:      s,
		scanID:     uuid.NewString(),
		workers:    cfg.Workers,
		diag:       cfg.Diagnostics,
		logger:     cfg.Logger,
	}
	if cfg.Prefilter {
		c.prefilter = prefilter.New(structures, c.matcher.ByteOrder())
		c.logger.Log("Prefilter built with %d anchors", c.prefilter.AnchorCount())
	}

	if err := s.AddScan(store.ScanRecord{ID: c.scanID, StartedAt: time.Now().UTC()}); err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}
	for _, st := range structures {
		if err := s.AddStructure(st); err != nil {
			return nil, fmt.Errorf("failed to record structure %s: %w", st.ID, err)
		}
	}

	return c, nil
}

// ScanID returns the uuid of the scan this Core records into.
func (c *Core) ScanID() string {
	return c.scanID
}

// Structures returns the structures applied to every buffer.
func (c *Core) Structures() []*types.Structure {
	return c.structures
}

// Store returns the store results are written to.
func (c *Core) Store() store.Store {
	return c.store
}

// ScanBuffer applies every structure to content and records the buffer,
// its provenance and the results. Results are grouped by structure, in
// structure order, each group ascending by offset. Result data views alias
// content.
func (c *Core) ScanBuffer(content []byte, id types.BufferID, prov types.Provenance) ([]types.Result, error) {
	if err := c.store.AddBuffer(id, int64(len(content))); err != nil {
		return nil, fmt.Errorf("failed to record buffer: %w", err)
	}
	if prov != nil {
		if err := c.store.AddProvenance(id, prov); err != nil {
			return nil, fmt.Errorf("failed to record provenance: %w", err)
		}
	}

	candidates := c.structures
	if c.prefilter != nil {
		candidates = c.prefilter.Filter(content)
	}

	var results []types.Result
	for _, s := range candidates {
		found := New(content, s.Fields,
			WithMatcher(c.matcher),
			WithDiagnostics(c.diag),
			WithStructureID(s.ID),
			WithBufferID(id),
			WithWorkers(c.workers),
		).Scan()

		for _, r := range found {
			if err := c.store.AddResult(c.scanID, r); err != nil {
				return nil, fmt.Errorf("failed to record result: %w", err)
			}
		}
		results = append(results, found...)
	}
	return results, nil
}

// Scan scans a single in-memory buffer.
func (c *Core) Scan(content []byte, source string) (*ScanResult, error) {
	id := types.ComputeBufferID(content)
	results, err := c.ScanBuffer(content, id, types.InlineProvenance{Source: source})
	if err != nil {
		return nil, err
	}
	return &ScanResult{Source: source, BufferID: id, Results: results}, nil
}

// ScanBatch scans multiple buffers
func (c *Core) ScanBatch(items []ContentItem) (*BatchScanResult, error) {
	batch := &BatchScanResult{Results: make([]ScanResult, 0, len(items))}
	for _, item := range items {
		r, err := c.Scan(item.Content, item.Source)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", item.Source, err)
		}
		batch.Results = append(batch.Results, *r)
		batch.Total += len(r.Results)
	}
	return batch, nil
}

// Close releases scanner resources
func (c *Core) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// usable drops structures that cannot be scanned, reporting why, and fails
// on duplicate ids.
func usable(structures []*types.Structure, diag types.Diagnostics) ([]*types.Structure, error) {
	out := make([]*types.Structure, 0, len(structures))
	for _, s := range structures {
		if err := structure.Validate(s); err != nil {
			var cfgErr *types.ConfigError
			if !errors.As(err, &cfgErr) {
				return nil, err
			}
			diag.ConfigIssue(cfgErr)
			continue
		}
		out = append(out, s)
	}
	if err := structure.ValidateSet(out); err != nil {
		return nil, err
	}
	return out, nil
}
