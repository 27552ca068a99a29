// Package source enumerates the buffers a scan runs over: files, directory
// trees, archive members, capture payloads and Azure blobs.
package source

import (
	"context"

	"github.com/revoverflow/walker/pkg/types"
)

// Callback receives one buffer. Enumerators may invoke it from several
// goroutines at once.
type Callback func(content []byte, id types.BufferID, prov types.Provenance) error

// Enumerator discovers buffers to scan from a source.
type Enumerator interface {
	// Enumerate yields buffers from the source. A buffer that cannot be
	// obtained is reported as *types.InputError.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// ExtractArchives expands zip and 7z members found while walking a
	// directory instead of scanning the archive bytes.
	ExtractArchives bool

	// Readers bounds concurrent file reads; 0 uses runtime.NumCPU.
	Readers int
}

func inputError(source string, err error) error {
	return &types.InputError{Source: source, Err: err}
}
