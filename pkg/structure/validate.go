package structure

import (
	"fmt"

	"github.com/revoverflow/walker/pkg/types"
)

// Validate checks a loaded structure before it is scanned.
func Validate(s *types.Structure) error {
	if s == nil {
		return fmt.Errorf("structure is nil")
	}
	if s.ID == "" {
		return fmt.Errorf("structure ID is required")
	}
	if len(s.Fields) == 0 {
		return types.NewConfigError(s.ID, "structure has no fields", nil)
	}

	for i, f := range s.Fields {
		if f.Width() <= 0 {
			return &types.ConfigError{Structure: s.ID, Field: i, Criterion: -1, Reason: fmt.Sprintf("%s field has no width", f.Primitive)}
		}
		for ci, c := range f.Criteria {
			if _, err := types.NewCriterion(c.Kind, f.Primitive, c.Value); err != nil {
				return &types.ConfigError{Structure: s.ID, Field: i, Criterion: ci, Reason: "invalid criteria", Err: err}
			}
		}
	}
	return nil
}

// ValidateSet validates every structure and rejects duplicate ids.
func ValidateSet(structures []*types.Structure) error {
	seen := make(map[string]bool, len(structures))
	for _, s := range structures {
		if err := Validate(s); err != nil {
			return err
		}
		if seen[s.ID] {
			return types.NewConfigError(s.ID, "duplicate structure ID", nil)
		}
		seen[s.ID] = true
	}
	return nil
}
