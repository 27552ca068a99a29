// Package scanner runs the sliding-window structure search over a buffer.
package scanner

import (
	"sort"
	"sync"

	"github.com/revoverflow/walker/pkg/matcher"
	"github.com/revoverflow/walker/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Scanner tests every start offset of a buffer against one field layout.
// The buffer and fields must not be mutated while Scan runs.
type Scanner struct {
	buffer   []byte
	fields   []types.Field
	matcher  *matcher.Matcher
	diag     types.Diagnostics
	id       string
	bufferID types.BufferID
	workers  int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMatcher sets the field matcher. Defaults to a little endian matcher.
func WithMatcher(m *matcher.Matcher) Option {
	return func(s *Scanner) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithDiagnostics sets the sink for pattern length mismatches.
func WithDiagnostics(d types.Diagnostics) Option {
	return func(s *Scanner) {
		if d != nil {
			s.diag = d
		}
	}
}

// WithStructureID tags results and diagnostics with a structure id.
func WithStructureID(id string) Option {
	return func(s *Scanner) {
		s.id = id
	}
}

// WithBufferID tags results with the buffer's content hash.
func WithBufferID(id types.BufferID) Option {
	return func(s *Scanner) {
		s.bufferID = id
	}
}

// WithWorkers splits the offset range across n goroutines. n <= 1 scans
// sequentially.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithOwnedBuffer makes the scanner copy the buffer instead of borrowing it,
// so results stay valid after the caller reuses its slice.
func WithOwnedBuffer() Option {
	return func(s *Scanner) {
		if s.buffer != nil {
			s.buffer = append([]byte(nil), s.buffer...)
		}
	}
}

// New creates a scanner over buffer for fields. The buffer is borrowed
// unless WithOwnedBuffer is given.
func New(buffer []byte, fields []types.Field, opts ...Option) *Scanner {
	s := &Scanner{
		buffer: buffer,
		fields: fields,
		diag:   types.NoopDiagnostics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.matcher == nil {
		s.matcher = matcher.New(matcher.Config{})
	}
	return s
}

// Buffer returns the scanned bytes.
func (s *Scanner) Buffer() []byte {
	return s.buffer
}

// StructureSize returns the byte span of one full field sequence.
func (s *Scanner) StructureSize() int {
	return matcher.StructureSize(s.fields)
}

// Scan returns every offset where all fields match in sequence, in
// ascending order. Overlapping matches are all reported. Result data views
// alias the buffer.
func (s *Scanner) Scan() []types.Result {
	if len(s.buffer) == 0 || len(s.fields) == 0 {
		return nil
	}

	size := s.StructureSize()
	if size <= 0 || len(s.buffer) < size {
		return nil
	}

	last := len(s.buffer) - size
	rep := newReporter(s.diag, s.id)

	if s.workers <= 1 || last+1 < s.workers*2 {
		return s.scanRange(0, last+1, size, rep)
	}
	return s.scanParallel(last+1, size, rep)
}

// =============================================================================
// HELPERS
// =============================================================================

// scanRange evaluates start offsets in [from, to).
func (s *Scanner) scanRange(from, to, size int, rep *reporter) []types.Result {
	var results []types.Result
	for i := from; i < to; i++ {
		if s.matchAt(i, size, rep) {
			results = append(results, types.Result{
				Offset:      i,
				Size:        size,
				Data:        s.buffer[i : i+size : i+size],
				StructureID: s.id,
				BufferID:    s.bufferID,
			})
		}
	}
	return results
}

func (s *Scanner) matchAt(start, size int, rep *reporter) bool {
	offset := 0
	for fi := range s.fields {
		f := &s.fields[fi]
		ok, err := s.matcher.MatchField(s.buffer, start+offset, f)
		if err != nil {
			rep.mismatch(fi, start+offset, err)
		}
		if !ok {
			return false
		}
		offset += f.Width()
	}
	return offset == size
}

func (s *Scanner) scanParallel(positions, size int, rep *reporter) []types.Result {
	windows := partition(positions, s.workers)
	parts := make([][]types.Result, len(windows))

	var g errgroup.Group
	for wi, w := range windows {
		g.Go(func() error {
			parts[wi] = s.scanRange(w.start, w.end, size, rep)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	results := make([]types.Result, 0, total)
	for _, p := range parts {
		results = append(results, p...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Offset < results[j].Offset
	})
	return results
}

// reporter forwards pattern length mismatches once per field criterion.
type reporter struct {
	mu        sync.Mutex
	diag      types.Diagnostics
	structure string
	seen      map[mismatchKey]bool
}

type mismatchKey struct {
	field     int
	criterion int
}

func newReporter(diag types.Diagnostics, structure string) *reporter {
	return &reporter{diag: diag, structure: structure, seen: make(map[mismatchKey]bool)}
}

func (r *reporter) mismatch(field, offset int, err error) {
	pm, ok := err.(*types.PatternLengthMismatchError)
	if !ok {
		return
	}

	key := mismatchKey{field: field, criterion: pm.Criterion}
	r.mu.Lock()
	if r.seen[key] {
		r.mu.Unlock()
		return
	}
	r.seen[key] = true
	r.mu.Unlock()

	reported := *pm
	reported.Structure = r.structure
	reported.Field = field
	reported.Offset = offset
	r.diag.PatternMismatch(&reported)
}
