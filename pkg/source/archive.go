package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/revoverflow/walker/pkg/types"
)

const (
	formatZip      = "zip"
	formatSevenZip = "7z"
)

var errMemberTooLarge = errors.New("archive member exceeds size limit")

// member is one regular file extracted from an archive.
type member struct {
	name    string
	content []byte
}

// ArchiveEnumerator yields every regular member of a zip or 7z archive.
type ArchiveEnumerator struct {
	path    string
	maxSize int64
}

// NewArchiveEnumerator creates an enumerator over the members of the archive
// at path. Members larger than maxSize are skipped (0 = no limit).
func NewArchiveEnumerator(path string, maxSize int64) *ArchiveEnumerator {
	return &ArchiveEnumerator{path: path, maxSize: maxSize}
}

// Enumerate reads the archive and invokes callback per member, in archive
// order.
func (e *ArchiveEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	format := archiveFormat(e.path)
	if format == "" {
		return inputError(e.path, fmt.Errorf("unsupported archive type %q", filepath.Ext(e.path)))
	}

	content, err := os.ReadFile(e.path)
	if err != nil {
		return inputError(e.path, err)
	}

	members, err := extractMembers(format, content, e.maxSize)
	if err != nil {
		return inputError(e.path, err)
	}
	return emitMembers(ctx, e.path, members, callback)
}

func emitMembers(ctx context.Context, archivePath string, members []member, callback Callback) error {
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		prov := types.ArchiveProvenance{ArchivePath: archivePath, MemberPath: m.name}
		if err := callback(m.content, types.ComputeBufferID(m.content), prov); err != nil {
			return err
		}
	}
	return nil
}

// archiveFormat returns the archive format implied by the extension of
// path, or "" when it is not an archive.
func archiveFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".jar", ".apk":
		return formatZip
	case ".7z":
		return formatSevenZip
	}
	return ""
}

func extractMembers(format string, content []byte, maxSize int64) ([]member, error) {
	switch format {
	case formatZip:
		return extractZip(content, maxSize)
	case formatSevenZip:
		return extractSevenZip(content, maxSize)
	}
	return nil, fmt.Errorf("unsupported archive format %q", format)
}

func extractZip(content []byte, maxSize int64) ([]member, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var members []member
	for _, f := range zr.File {
		info := f.FileInfo()
		if !info.Mode().IsRegular() {
			continue
		}
		if maxSize > 0 && info.Size() > maxSize {
			continue
		}
		data, err := readMember(f.Open, maxSize)
		if errors.Is(err, errMemberTooLarge) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		members = append(members, member{name: f.Name, content: data})
	}
	return members, nil
}

func extractSevenZip(content []byte, maxSize int64) ([]member, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", err)
	}

	var members []member
	for _, f := range r.File {
		info := f.FileInfo()
		if info.IsDir() {
			continue
		}
		if maxSize > 0 && info.Size() > maxSize {
			continue
		}
		data, err := readMember(f.Open, maxSize)
		if errors.Is(err, errMemberTooLarge) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		members = append(members, member{name: f.Name, content: data})
	}
	return members, nil
}

// readMember reads one archive member, stopping past maxSize so a header
// that understates the size cannot inflate memory. Oversized members report
// errMemberTooLarge.
func readMember(open func() (io.ReadCloser, error), maxSize int64) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if maxSize <= 0 {
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, errMemberTooLarge
	}
	return data, nil
}
