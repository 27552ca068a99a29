package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revoverflow/walker/pkg/types"
)

// collector gathers callback invocations from concurrent readers.
type collector struct {
	mu    sync.Mutex
	paths []string
	kinds []string
	data  map[string][]byte
}

func (c *collector) callback(content []byte, id types.BufferID, prov types.Provenance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != types.ComputeBufferID(content) {
		return errors.New("buffer id does not match content")
	}
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.paths = append(c.paths, prov.Path())
	c.kinds = append(c.kinds, prov.Kind())
	c.data[prov.Path()] = content
	return nil
}

func (c *collector) sorted() []string {
	out := append([]string(nil), c.paths...)
	sort.Strings(out)
	return out
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestFilesystemEnumerator(t *testing.T) {
	// Arrange
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), []byte{0x00, 0x01, 0x02})
	writeFile(t, filepath.Join(root, "b.txt"), []byte("hello"))
	writeFile(t, filepath.Join(root, "sub", "c.dmp"), []byte("nested\x00dump"))

	var c collector

	// Act
	err := NewFilesystemEnumerator(Config{Root: root}).Enumerate(context.Background(), c.callback)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.bin"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "sub", "c.dmp"),
	}, c.sorted())
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, c.data[filepath.Join(root, "a.bin")], "binary files are scanned")
	for _, k := range c.kinds {
		assert.Equal(t, "file", k)
	}
}

func TestFilesystemEnumerator_Filters(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			name:   "hidden and large files skipped by default",
			config: Config{MaxFileSize: 10},
			want:   []string{"small.bin"},
		},
		{
			name:   "hidden included",
			config: Config{MaxFileSize: 10, IncludeHidden: true},
			want:   []string{".hidden", ".hiddendir/inner.bin", "small.bin"},
		},
		{
			name:   "no size limit",
			config: Config{},
			want:   []string{"large.bin", "small.bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "small.bin"), []byte("tiny"))
			writeFile(t, filepath.Join(root, "large.bin"), make([]byte, 64))
			writeFile(t, filepath.Join(root, ".hidden"), []byte("h"))
			writeFile(t, filepath.Join(root, ".hiddendir", "inner.bin"), []byte("i"))

			cfg := tt.config
			cfg.Root = root
			var c collector

			// Act
			err := NewFilesystemEnumerator(cfg).Enumerate(context.Background(), c.callback)

			// Assert
			require.NoError(t, err)
			var rel []string
			for _, p := range c.sorted() {
				r, err := filepath.Rel(root, p)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestFilesystemEnumerator_Gitignore(t *testing.T) {
	// Arrange
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), []byte("*.log\n"))
	writeFile(t, filepath.Join(root, "keep.bin"), []byte("keep"))
	writeFile(t, filepath.Join(root, "drop.log"), []byte("drop"))
	var c collector

	// Act
	err := NewFilesystemEnumerator(Config{Root: root}).Enumerate(context.Background(), c.callback)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "keep.bin")}, c.sorted())
}

func TestFilesystemEnumerator_CallbackError(t *testing.T) {
	// Arrange
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), []byte("a"))
	stop := errors.New("stop")

	// Act
	err := NewFilesystemEnumerator(Config{Root: root, Readers: 1}).Enumerate(context.Background(),
		func([]byte, types.BufferID, types.Provenance) error { return stop })

	// Assert
	assert.ErrorIs(t, err, stop)
}

func TestFilesystemEnumerator_Cancelled(t *testing.T) {
	// Arrange
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), []byte("a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c collector

	// Act
	err := NewFilesystemEnumerator(Config{Root: root}).Enumerate(ctx, c.callback)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".git"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden("dump.bin"))
}
