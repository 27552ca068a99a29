package report

import (
	"encoding/json"
	"io"

	"github.com/revoverflow/walker/pkg/types"
)

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []*types.StoredResult) error {
	if results == nil {
		results = []*types.StoredResult{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
