package source

import (
	"context"
	"sync"

	"github.com/revoverflow/walker/pkg/types"
)

// CombinedEnumerator runs multiple enumerators sequentially and deduplicates
// buffers by BufferID so each unique buffer is yielded at most once.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator wraps enumerators, run in order.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// Enumerate runs each child enumerator in sequence, passing unique buffers
// to callback.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var mu sync.Mutex
	seen := make(map[types.BufferID]bool)

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(content []byte, id types.BufferID, prov types.Provenance) error {
			mu.Lock()
			if seen[id] {
				mu.Unlock()
				return nil
			}
			seen[id] = true
			mu.Unlock()

			return callback(content, id, prov)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
