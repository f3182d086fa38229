// Package fifo implements the first-in, first-out eviction policy.
package fifo

import (
	"github.com/IvanBrykalov/pagecache/internal/util"
	"github.com/IvanBrykalov/pagecache/policy"
)

// fifo hands out slot indices round-robin from a single cache-wide cursor.
// The cursor is atomic, so concurrent evictions never share a value until
// it wraps around.
type fifo struct {
	n      uint64
	cursor util.PaddedAtomicUint64
}

type fifoPolicy struct{}

// New returns a Policy factory for FIFO selectors.
func New() policy.Policy { return fifoPolicy{} }

func (fifoPolicy) Kind() policy.Kind { return policy.FIFO }

// New binds a selector to the cache's slots. Only the slot count is used;
// FIFO ignores usage metadata.
func (fifoPolicy) New(h policy.Hooks) policy.Selector {
	return &fifo{n: uint64(h.Len())}
}

// Victim returns 0, 1, ..., n-1, 0, ... on successive calls.
func (f *fifo) Victim() int {
	if f.n == 0 {
		return -1
	}
	return int((f.cursor.Add(1) - 1) % f.n)
}
