package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/revoverflow/walker/pkg/store"
	"github.com/revoverflow/walker/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SARIFSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	SARIFVersion   = "2.1.0"
	ToolName       = "walker"
)

// SARIFReport is the top-level SARIF report structure
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single invocation of the tool
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata
type SARIFDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes one structure layout.
type SARIFRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription SARIFMessage `json:"shortDescription"`
}

// SARIFResult is one structure match.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
}

// SARIFMessage contains text
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where a result was found
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation specifies the artifact and byte range
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

// SARIFArtifactLocation identifies the buffer
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion is a byte range within the artifact.
type SARIFRegion struct {
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

// NewSARIFReport creates an empty report for the given tool version.
func NewSARIFReport(version string) *SARIFReport {
	return &SARIFReport{
		Schema:  SARIFSchemaURI,
		Version: SARIFVersion,
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:    ToolName,
						Version: version,
						Rules:   []SARIFRule{},
					},
				},
				Results: []SARIFResult{},
			},
		},
	}
}

// AddStructure registers a structure as a rule.
func (r *SARIFReport) AddStructure(s store.StructureRecord) {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	desc := s.Description
	if desc == "" {
		desc = fmt.Sprintf("%d-byte layout with %d fields", s.Size, s.Fields)
	}
	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, SARIFRule{
		ID:               s.ID,
		Name:             name,
		ShortDescription: SARIFMessage{Text: desc},
	})
}

// AddResult adds one match. Results without a source fall back to the
// buffer hash as artifact URI.
func (r *SARIFReport) AddResult(res *types.StoredResult) {
	uri := res.Source
	if uri == "" {
		uri = "buffer:" + res.BufferID.Hex()
	}

	r.Runs[0].Results = append(r.Runs[0].Results, SARIFResult{
		RuleID:  res.StructureID,
		Level:   "note",
		Message: SARIFMessage{Text: fmt.Sprintf("%s at 0x%x", res.StructureID, res.Offset)},
		Locations: []SARIFLocation{
			{
				PhysicalLocation: SARIFPhysicalLocation{
					ArtifactLocation: SARIFArtifactLocation{URI: formatFileURI(uri)},
					Region:           SARIFRegion{ByteOffset: res.Offset, ByteLength: res.Size},
				},
			},
		},
	})
}

// ToJSON serializes the report to JSON bytes
func (r *SARIFReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteSARIF renders structures and results as one SARIF run.
func WriteSARIF(w io.Writer, version string, structures []store.StructureRecord, results []*types.StoredResult) error {
	rep := NewSARIFReport(version)
	for _, s := range structures {
		rep.AddStructure(s)
	}
	for _, res := range results {
		rep.AddResult(res)
	}
	data, err := rep.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode SARIF: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths and URLs stay as-is
func formatFileURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
