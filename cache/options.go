package cache

import (
	"go.uber.org/zap"

	"github.com/IvanBrykalov/pagecache/policy"
	"github.com/IvanBrykalov/pagecache/store"
)

// EvictReason explains why a slot lost its page.
type EvictReason int

const (
	// EvictPolicy: the slot was chosen by the eviction policy and reloaded
	// with another page.
	EvictPolicy EvictReason = iota
	// EvictPoisoned: a panic while the slot was locked left its content
	// untrusted, so the slot was invalidated.
	EvictPoisoned
)

func (r EvictReason) String() string {
	if r == EvictPoisoned {
		return "poisoned"
	}
	return "policy"
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Flush()
	FetchFailure()
	// Resident reports the number of slots currently holding a page.
	Resident(n int)
}

// Options configures a Cache. Zero values are mostly safe; New applies:
//   - Policy zero value  => FIFO
//   - nil Metrics        => NoopMetrics
//   - nil Logger         => zap.NewNop()
//
// Capacity, MaxFetchAttempts and Store are required.
type Options struct {
	// Capacity is the number of page slots; memory use is Capacity*page.Size
	// plus metadata. It never changes after New.
	Capacity int

	// Policy selects victims on a miss.
	Policy policy.Kind

	// MaxFetchAttempts bounds the lookup/evict loop of FetchEntry and
	// FetchMutEntry. Exhausting it returns ErrFetchFailure.
	MaxFetchAttempts int

	// Store is the backing store pages are loaded from and flushed to.
	// It must be safe for concurrent use.
	Store store.FileManager

	// Observability
	Metrics Metrics
	Logger  *zap.Logger
}
