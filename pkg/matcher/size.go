package matcher

import "github.com/revoverflow/walker/pkg/types"

// StructureSize returns the byte span one full field sequence occupies.
func StructureSize(fields []types.Field) int {
	size := 0
	for i := range fields {
		size += fields[i].Width()
	}
	return size
}
