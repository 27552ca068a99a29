package source

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/revoverflow/walker/pkg/types"
)

// FilesystemEnumerator enumerates files below a directory.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate walks the tree and yields every eligible file. Paths are
// collected sequentially, then read by a pool of readers, so callback runs
// concurrently and in no particular order.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	files, err := e.collect(ctx)
	if err != nil {
		return err
	}

	readers := e.config.Readers
	if readers <= 0 {
		readers = runtime.NumCPU()
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	paths := make(chan string, readers*2)

	g.Go(func() error {
		defer close(paths)
		for _, p := range files {
			select {
			case paths <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < readers; i++ {
		g.Go(func() error {
			for p := range paths {
				if err := e.processFile(ctx, p, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return origCtx.Err()
}

// collect walks the tree and returns the paths to read. A .gitignore at the
// root is honoured.
func (e *FilesystemEnumerator) collect(ctx context.Context) ([]string, error) {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, _ = gitignore.CompileIgnoreFile(gitignorePath)
	}

	var files []string
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return inputError(path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			if path != e.config.Root && !e.config.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !e.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || target.IsDir() {
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}
		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			return nil
		}

		if ignore != nil {
			rel, err := filepath.Rel(e.config.Root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(rel) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// processFile reads a single file, expanding archives when configured and
// decoding packet captures into their payloads.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, callback Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return inputError(path, err)
	}

	if e.config.ExtractArchives {
		if format := archiveFormat(path); format != "" {
			members, err := extractMembers(format, content, e.config.MaxFileSize)
			if err == nil {
				return emitMembers(ctx, path, members, callback)
			}
			// Unreadable archives are scanned as plain bytes.
		}
	}

	if isCapture(path) {
		if reader, err := openCapture(bufio.NewReader(bytes.NewReader(content))); err == nil {
			return emitPackets(ctx, path, reader, callback)
		}
	}

	return callback(content, types.ComputeBufferID(content), types.FileProvenance{FilePath: path})
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
