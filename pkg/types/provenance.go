package types

import (
	"fmt"
	"time"
)

// Provenance tracks where a buffer came from.
type Provenance interface {
	Kind() string
	// Path returns a displayable location.
	Path() string
}

// FileProvenance for buffers read from a file.
type FileProvenance struct {
	FilePath string
}

func (f FileProvenance) Kind() string { return "file" }

func (f FileProvenance) Path() string { return f.FilePath }

// ArchiveProvenance for buffers extracted from a zip or 7z member.
type ArchiveProvenance struct {
	ArchivePath string
	MemberPath  string
}

func (a ArchiveProvenance) Kind() string { return "archive" }

func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// PacketProvenance for application payloads taken from a capture file.
type PacketProvenance struct {
	CapturePath string
	Index       int // 1-based packet number
	Timestamp   time.Time
}

func (p PacketProvenance) Kind() string { return "packet" }

func (p PacketProvenance) Path() string {
	return fmt.Sprintf("%s#%d", p.CapturePath, p.Index)
}

// BlobProvenance for buffers downloaded from Azure blob storage.
type BlobProvenance struct {
	Container string
	Blob      string
}

func (b BlobProvenance) Kind() string { return "blob" }

func (b BlobProvenance) Path() string {
	return fmt.Sprintf("azblob://%s/%s", b.Container, b.Blob)
}

// InlineProvenance for buffers handed over in memory (server requests, library calls).
type InlineProvenance struct {
	Source string
}

func (i InlineProvenance) Kind() string { return "inline" }

func (i InlineProvenance) Path() string { return i.Source }
