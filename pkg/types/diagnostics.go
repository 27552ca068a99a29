package types

import "sync"

// Diagnostics receives non-fatal problems found while loading structures or
// scanning. Implementations must be safe for concurrent use.
type Diagnostics interface {
	ConfigIssue(err *ConfigError)
	PatternMismatch(err *PatternLengthMismatchError)
}

// NoopDiagnostics discards everything.
type NoopDiagnostics struct{}

func (NoopDiagnostics) ConfigIssue(*ConfigError) {}

func (NoopDiagnostics) PatternMismatch(*PatternLengthMismatchError) {}

// DiagnosticsRecorder keeps every reported problem in memory.
type DiagnosticsRecorder struct {
	mu       sync.Mutex
	config   []*ConfigError
	patterns []*PatternLengthMismatchError
}

func (r *DiagnosticsRecorder) ConfigIssue(err *ConfigError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = append(r.config, err)
}

func (r *DiagnosticsRecorder) PatternMismatch(err *PatternLengthMismatchError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, err)
}

// ConfigIssues returns a copy of the recorded config problems.
func (r *DiagnosticsRecorder) ConfigIssues() []*ConfigError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ConfigError(nil), r.config...)
}

// PatternMismatches returns a copy of the recorded pattern mismatches.
func (r *DiagnosticsRecorder) PatternMismatches() []*PatternLengthMismatchError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*PatternLengthMismatchError(nil), r.patterns...)
}

// Messages returns every recorded problem rendered as text.
func (r *DiagnosticsRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.config)+len(r.patterns))
	for _, e := range r.config {
		out = append(out, e.Error())
	}
	for _, e := range r.patterns {
		out = append(out, e.Error())
	}
	return out
}
