package source

import (
	"fmt"
	"os"
	"strings"
)

// Options tunes how Open builds an enumerator.
type Options struct {
	Config

	// AzureConnectionString authenticates azblob:// targets.
	AzureConnectionString string
}

// Open picks an enumerator for target: azblob:// URLs, directories,
// zip/7z archives, pcap captures, or a single file.
func Open(target string, opts Options) (Enumerator, error) {
	if strings.HasPrefix(target, AzureScheme) {
		return NewAzureBlobEnumerator(target, opts.AzureConnectionString, opts.MaxFileSize)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, inputError(target, err)
	}

	if info.IsDir() {
		cfg := opts.Config
		cfg.Root = target
		return NewFilesystemEnumerator(cfg), nil
	}

	if !info.Mode().IsRegular() {
		return nil, inputError(target, fmt.Errorf("not a regular file"))
	}

	switch {
	case archiveFormat(target) != "" && opts.ExtractArchives:
		return NewArchiveEnumerator(target, opts.MaxFileSize), nil
	case isCapture(target):
		return NewPcapEnumerator(target), nil
	}
	return NewFileEnumerator(target, opts.MaxFileSize), nil
}

// OpenAll opens every target and combines them, deduplicating buffers.
func OpenAll(targets []string, opts Options) (Enumerator, error) {
	if len(targets) == 1 {
		return Open(targets[0], opts)
	}
	enumerators := make([]Enumerator, 0, len(targets))
	for _, t := range targets {
		e, err := Open(t, opts)
		if err != nil {
			return nil, err
		}
		enumerators = append(enumerators, e)
	}
	return NewCombinedEnumerator(enumerators...), nil
}
