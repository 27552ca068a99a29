package source

import (
	"context"
	"fmt"
	"os"

	"github.com/revoverflow/walker/pkg/types"
)

// FileEnumerator yields a single file.
type FileEnumerator struct {
	path    string
	maxSize int64
}

// NewFileEnumerator creates an enumerator for one file. maxSize of 0 means
// no limit.
func NewFileEnumerator(path string, maxSize int64) *FileEnumerator {
	return &FileEnumerator{path: path, maxSize: maxSize}
}

// Enumerate reads the file and invokes callback once.
func (e *FileEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(e.path)
	if err != nil {
		return inputError(e.path, err)
	}
	if info.IsDir() {
		return inputError(e.path, fmt.Errorf("is a directory"))
	}
	if e.maxSize > 0 && info.Size() > e.maxSize {
		return inputError(e.path, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), e.maxSize))
	}

	content, err := os.ReadFile(e.path)
	if err != nil {
		return inputError(e.path, err)
	}

	return callback(content, types.ComputeBufferID(content), types.FileProvenance{FilePath: e.path})
}

// InlineEnumerator yields buffers held in memory.
type InlineEnumerator struct {
	items []InlineItem
}

// InlineItem is one in-memory buffer and the name it is reported under.
type InlineItem struct {
	Source  string
	Content []byte
}

// NewInlineEnumerator creates an enumerator over in-memory buffers.
func NewInlineEnumerator(items ...InlineItem) *InlineEnumerator {
	return &InlineEnumerator{items: items}
}

// Enumerate invokes callback for each item in order.
func (e *InlineEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	for _, item := range e.items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(item.Content, types.ComputeBufferID(item.Content), types.InlineProvenance{Source: item.Source}); err != nil {
			return err
		}
	}
	return nil
}
