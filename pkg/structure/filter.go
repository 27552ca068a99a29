package structure

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/revoverflow/walker/pkg/types"
)

// FilterConfig specifies include and exclude patterns for structure ids.
type FilterConfig struct {
	Include []string // regexes; only matching structures are kept
	Exclude []string // regexes; matching structures are dropped
}

// ParsePatterns splits a comma-separated string into trimmed patterns.
func ParsePatterns(patterns string) []string {
	if patterns == "" {
		return []string{}
	}

	parts := strings.Split(patterns, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter applies include then exclude patterns to structure ids. An empty
// include list keeps everything.
func Filter(structures []*types.Structure, config FilterConfig) ([]*types.Structure, error) {
	if len(structures) == 0 {
		return structures, nil
	}

	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Structure, 0, len(structures))
	for _, s := range structures {
		if len(include) > 0 && !matchesAny(s.ID, include) {
			continue
		}
		if matchesAny(s.ID, exclude) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func compileAll(patterns []string) ([]*regexp2.Regexp, error) {
	var out []*regexp2.Regexp
	for _, pattern := range patterns {
		re, err := regexp2.Compile(pattern, regexp2.RE2)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchesAny(id string, regexes []*regexp2.Regexp) bool {
	for _, re := range regexes {
		if ok, err := re.MatchString(id); err == nil && ok {
			return true
		}
	}
	return false
}
