package cache

import (
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/policy"
)

// slot is one cache entry: a page, the id it currently holds and whether
// that mapping is meaningful. Slots are allocated once by New and rewritten
// in place on every load.
//
// mu guards id and page. valid is written only while mu is held
// exclusively but is atomic so policies can read it without locking.
// The usage metadata is atomic because read guards update it concurrently.
type slot struct {
	idx   int
	mu    sync.RWMutex
	valid atomic.Bool
	id    page.ID
	page  page.Page

	// Usage metadata, reset on load.
	hits       atomic.Uint64 // guard reads and writes since load
	lastAccess atomic.Uint64 // cache clock at the last access, acquisition or load
	claimed    atomic.Bool   // an evictor has picked this slot
}

// holds reports whether the slot maps id. Caller holds mu (either mode).
func (s *slot) holds(id page.ID) bool {
	return s.valid.Load() && s.id == id
}

// touch records one read or write at clock value now.
func (s *slot) touch(now uint64) {
	s.hits.Add(1)
	s.lastAccess.Store(now)
}

// stamp records a guard acquisition: recency only, no access count.
func (s *slot) stamp(now uint64) { s.lastAccess.Store(now) }

// fill installs a freshly fetched image for id. Caller holds mu exclusively.
func (s *slot) fill(id page.ID, data []byte, now uint64) {
	s.page = page.FromImage(data)
	s.id = id
	s.hits.Store(0)
	s.lastAccess.Store(now)
	s.valid.Store(true)
}

// invalidate drops the mapping. Caller holds mu exclusively.
func (s *slot) invalidate() {
	s.valid.Store(false)
	s.page = page.Page{}
	s.hits.Store(0)
	s.lastAccess.Store(0)
}

func (s *slot) stats() policy.Stats {
	return policy.Stats{
		Valid:      s.valid.Load(),
		Claimed:    s.claimed.Load(),
		Hits:       s.hits.Load(),
		LastAccess: s.lastAccess.Load(),
	}
}

// slotHooks adapts the cache's slots to policy.Hooks.
type slotHooks struct{ slots []*slot }

func (h slotHooks) Len() int                 { return len(h.slots) }
func (h slotHooks) Stats(i int) policy.Stats { return h.slots[i].stats() }
