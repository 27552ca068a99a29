package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/revoverflow/walker/pkg/types"
)

// provenanceRow is the column form of a provenance record shared by the SQL
// backends.
type provenanceRow struct {
	Kind      string
	Path      string
	Container *string
	Member    *string
	Timestamp *string
}

func toProvenanceRow(prov types.Provenance) (provenanceRow, error) {
	row := provenanceRow{Kind: prov.Kind(), Path: prov.Path()}

	switch p := prov.(type) {
	case types.FileProvenance, types.InlineProvenance:
	case types.ArchiveProvenance:
		row.Container, row.Member = &p.ArchivePath, &p.MemberPath
	case types.PacketProvenance:
		index := strconv.Itoa(p.Index)
		row.Container, row.Member = &p.CapturePath, &index
		if !p.Timestamp.IsZero() {
			ts := p.Timestamp.UTC().Format(timeLayout)
			row.Timestamp = &ts
		}
	case types.BlobProvenance:
		row.Container, row.Member = &p.Container, &p.Blob
	default:
		return row, fmt.Errorf("unknown provenance type: %T", prov)
	}
	return row, nil
}

func (row provenanceRow) provenance() (types.Provenance, error) {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	switch row.Kind {
	case "file":
		return types.FileProvenance{FilePath: row.Path}, nil
	case "inline":
		return types.InlineProvenance{Source: row.Path}, nil
	case "archive":
		return types.ArchiveProvenance{ArchivePath: deref(row.Container), MemberPath: deref(row.Member)}, nil
	case "packet":
		index, err := strconv.Atoi(deref(row.Member))
		if err != nil {
			return nil, fmt.Errorf("parsing packet index: %w", err)
		}
		p := types.PacketProvenance{CapturePath: deref(row.Container), Index: index}
		if row.Timestamp != nil {
			if p.Timestamp, err = time.Parse(timeLayout, *row.Timestamp); err != nil {
				return nil, fmt.Errorf("parsing packet timestamp: %w", err)
			}
		}
		return p, nil
	case "blob":
		return types.BlobProvenance{Container: deref(row.Container), Blob: deref(row.Member)}, nil
	default:
		return nil, fmt.Errorf("unknown provenance type: %s", row.Kind)
	}
}
