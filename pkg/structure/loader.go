// Package structure loads structure layouts from JSON or YAML descriptors and
// from the embedded builtin set.
package structure

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/revoverflow/walker/pkg/types"
)

// BuiltinPrefix selects embedded layouts in Resolve: "builtin" for all of
// them, "builtin:<id>" for one.
const BuiltinPrefix = "builtin"

// Loader builds structures from descriptor documents. Malformed fields and
// criteria are reported to its Diagnostics and skipped.
type Loader struct {
	fs   fs.FS // embedded filesystem for builtin layouts
	diag types.Diagnostics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS replaces the builtin filesystem. Layouts are read from builtin/*.yml.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithDiagnostics sets the sink for skipped fields and criteria.
func WithDiagnostics(d types.Diagnostics) LoaderOption {
	return func(l *Loader) {
		if d != nil {
			l.diag = d
		}
	}
}

// NewLoader creates a loader backed by the embedded builtin layouts.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:   builtinFS,
		diag: types.NoopDiagnostics{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses a descriptor document. defaultID names the structure when the
// document is a bare field array or omits ids. Only an unparseable document
// is an error; every other problem becomes a diagnostic.
func (l *Loader) Load(data []byte, defaultID string) ([]*types.Structure, error) {
	if defaultID == "" {
		defaultID = "structure"
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, types.NewConfigError(defaultID, "failed to parse descriptor", err)
	}

	switch v := doc.(type) {
	case []any:
		return []*types.Structure{l.convertStructure(map[string]any{"fields": v}, defaultID)}, nil

	case map[string]any:
		if raw, ok := v["structures"]; ok {
			list, ok := raw.([]any)
			if !ok {
				return nil, types.NewConfigError(defaultID, "structures must be a list", nil)
			}
			var out []*types.Structure
			for i, entry := range list {
				m, ok := entry.(map[string]any)
				if !ok {
					l.diag.ConfigIssue(types.NewConfigError(fmt.Sprintf("%s[%d]", defaultID, i), "structure entry is not an object", nil))
					continue
				}
				id := defaultID
				if len(list) > 1 {
					id = fmt.Sprintf("%s.%d", defaultID, i)
				}
				out = append(out, l.convertStructure(m, id))
			}
			return out, nil
		}
		if _, ok := v["fields"]; ok {
			return []*types.Structure{l.convertStructure(v, defaultID)}, nil
		}
	}

	return nil, types.NewConfigError(defaultID, "descriptor must be a field list or contain structures", nil)
}

// LoadFile loads a descriptor from disk. The file name without extension is
// the default structure id.
func (l *Loader) LoadFile(path string) ([]*types.Structure, error) {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewConfigError(id, "failed to read descriptor "+path, err)
	}
	return l.Load(data, id)
}

// LoadBuiltin loads every embedded layout, sorted by id.
func (l *Loader) LoadBuiltin() ([]*types.Structure, error) {
	var structures []*types.Structure

	err := fs.WalkDir(l.fs, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (filepath.Ext(path) != ".yml" && filepath.Ext(path) != ".yaml") {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		loaded, err := l.Load(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		structures = append(structures, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(structures, func(i, j int) bool {
		return structures[i].ID < structures[j].ID
	})
	return structures, nil
}

// Resolve maps a reference to structures: "builtin", "builtin:<id>" or a
// descriptor path.
func (l *Loader) Resolve(ref string) ([]*types.Structure, error) {
	if ref != BuiltinPrefix && !strings.HasPrefix(ref, BuiltinPrefix+":") {
		return l.LoadFile(ref)
	}

	builtin, err := l.LoadBuiltin()
	if err != nil {
		return nil, err
	}
	if ref == BuiltinPrefix {
		return builtin, nil
	}

	id := strings.TrimPrefix(ref, BuiltinPrefix+":")
	for _, s := range builtin {
		if s.ID == id {
			return []*types.Structure{s}, nil
		}
	}
	return nil, types.NewConfigError(id, "unknown builtin structure", nil)
}

// =============================================================================
// HELPERS
// =============================================================================

func (l *Loader) convertStructure(raw map[string]any, defaultID string) *types.Structure {
	s := &types.Structure{
		ID:          stringValue(raw, "id"),
		Name:        stringValue(raw, "name"),
		Description: stringValue(raw, "description"),
	}
	if s.ID == "" {
		s.ID = defaultID
	}
	if s.Name == "" {
		s.Name = s.ID
	}

	entries, ok := raw["fields"].([]any)
	if !ok {
		l.diag.ConfigIssue(types.NewConfigError(s.ID, "fields must be a list", nil))
		return s
	}

	for i, entry := range entries {
		if f, ok := l.convertField(s.ID, i, entry); ok {
			s.Fields = append(s.Fields, f)
		}
	}
	if len(s.Fields) == 0 {
		l.diag.ConfigIssue(types.NewConfigError(s.ID, "no usable fields", nil))
	}
	return s
}

func (l *Loader) convertField(structure string, index int, entry any) (types.Field, bool) {
	fieldErr := func(reason string, err error) (types.Field, bool) {
		l.diag.ConfigIssue(&types.ConfigError{Structure: structure, Field: index, Criterion: -1, Reason: reason, Err: err})
		return types.Field{}, false
	}

	raw, ok := entry.(map[string]any)
	if !ok {
		return fieldErr("field entry is not an object", nil)
	}

	typeName, ok := raw["type"].(string)
	if !ok || typeName == "" {
		return fieldErr("field type is missing", nil)
	}

	criteria, ok := lookup(raw, "criterias", "criteria")
	if !ok {
		return fieldErr("no criteria set for "+typeName+" field", nil)
	}
	list, ok := criteria.([]any)
	if !ok {
		return fieldErr("criteria of "+typeName+" field must be a list", nil)
	}
	if len(list) == 0 {
		return fieldErr("no criteria set for "+typeName+" field", nil)
	}

	size := 0
	rawSize, sizeProvided := lookup(raw, "size")
	if sizeProvided {
		n, err := parseUnsigned(rawSize, 31)
		if err != nil || n == 0 {
			return fieldErr("size must be a positive integer", err)
		}
		size = int(n)
	}

	primitive := types.PrimitiveByName(typeName, sizeProvided)
	if primitive == types.PrimitiveNone {
		switch other := types.PrimitiveByName(typeName, !sizeProvided); {
		case other.IsDynamic():
			return fieldErr("primitive "+typeName+" requires a size", nil)
		case other.Valid():
			return fieldErr("primitive "+typeName+" does not take a size", nil)
		default:
			return fieldErr("unknown primitive "+typeName, nil)
		}
	}

	field := types.Field{
		Name:      stringValue(raw, "name"),
		Primitive: primitive,
	}
	if primitive.IsDynamic() {
		field.Size = size
	}

	for ci, c := range list {
		if criterion, ok := l.convertCriterion(structure, index, ci, &field, c); ok {
			field.Criteria = append(field.Criteria, criterion)
		}
	}
	if len(field.Criteria) == 0 {
		return fieldErr("no usable criteria for "+typeName+" field", nil)
	}
	return field, true
}

func (l *Loader) convertCriterion(structure string, fieldIndex, index int, field *types.Field, entry any) (types.Criterion, bool) {
	criterionErr := func(reason string, err error) (types.Criterion, bool) {
		l.diag.ConfigIssue(&types.ConfigError{Structure: structure, Field: fieldIndex, Criterion: index, Reason: reason, Err: err})
		return types.Criterion{}, false
	}

	raw, ok := entry.(map[string]any)
	if !ok {
		return criterionErr("criteria entry is not an object", nil)
	}

	name, ok := raw["type"].(string)
	if !ok || name == "" {
		return criterionErr("criteria type is missing", nil)
	}

	value, valueProvided := lookup(raw, "value")
	kind := types.CriteriaByName(name, valueProvided)
	if kind == types.CriteriaNone {
		if other := types.CriteriaByName(name, !valueProvided); other.Valid() {
			if other.NeedsValue() {
				return criterionErr("criteria "+name+" requires a value", nil)
			}
			return criterionErr("criteria "+name+" does not take a value", nil)
		}
		return criterionErr("unknown criteria "+name, nil)
	}

	if !kind.Accepts(field.Primitive) {
		return criterionErr(fmt.Sprintf("criteria %s is not applicable to %s fields", kind, field.Primitive), nil)
	}

	var literal types.Literal
	if valueProvided {
		var err error
		literal, err = convertLiteral(field.Primitive, field.Size, value)
		if err != nil {
			return criterionErr("invalid "+field.Primitive.String()+" value", err)
		}
		if p, ok := literal.(types.Pattern); ok && p.Len() != field.Size {
			// kept: it reports as a length mismatch at scan time as well
			l.diag.ConfigIssue(&types.ConfigError{
				Structure: structure, Field: fieldIndex, Criterion: index,
				Reason: fmt.Sprintf("pattern has %d tokens, field is %d bytes", p.Len(), field.Size),
			})
		}
	}

	c, err := types.NewCriterion(kind, field.Primitive, literal)
	if err != nil {
		return criterionErr("invalid criteria", err)
	}
	return c, true
}
