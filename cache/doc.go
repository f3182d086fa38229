// Package cache provides a bounded, concurrent page cache: a fixed number
// of 4 KiB page slots, each behind its own reader/writer lock, loaded on
// demand from a store.FileManager and recycled by a pluggable eviction
// policy (FIFO, LFU, LRU or MRU).
//
// # Design
//
//   - Slots: New allocates Capacity empty slots up front. A slot holds at
//     most one page mapping and is rewritten in place on every load; it is
//     never reallocated.
//
//   - Lookup: a linear scan that read-locks each slot in turn. Because the
//     scan is not atomic over the whole cache, a hit is re-verified after
//     the slot lock is taken, and a miss is retried.
//
//   - Fetch protocol: FetchEntry/FetchMutEntry loop at most
//     MaxFetchAttempts times: lookup, then either lock-and-verify (hit) or
//     evict-and-load (miss). Exhausting the budget returns ErrFetchFailure
//     instead of spinning forever.
//
//   - Loads: concurrent misses for the same page are coalesced, so a page
//     is never resident in two slots. The victim stays write-locked while
//     it is flushed (if dirty) and refilled, so no reader sees a torn page.
//
//   - Policies: FIFO uses one atomic cursor; LFU, LRU and MRU read per-slot
//     access counts and recency stamps. Every read or write through a guard
//     is one access; acquiring a guard only refreshes recency.
//
//   - Errors: page-tier errors (package page) describe byte-range
//     violations and are returned unchanged; cache-tier errors (*Error)
//     describe lookup, fetch, store and poisoning failures. FromPageError
//     and ToPageError convert between tiers and are deliberately lossy.
//
//   - Poisoning: a panic while the cache holds a slot lock (during a load,
//     or inside Manager.UpdatePage) invalidates that slot and is reported
//     to the panicking caller as ErrPoisonedEntry. Other callers are not
//     affected; the slot is reused on the next miss.
//
// # Basic usage
//
//	m, err := cache.NewManager(cache.Options{
//	    Capacity:         128,
//	    Policy:           policy.LRU,
//	    MaxFetchAttempts: 4,
//	    Store:            memstore.New(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer m.Close(ctx)
//
//	_ = m.WritePageAt(ctx, 7, 0, []byte("hello"))
//	b, _ := m.ReadPageAt(ctx, 7, 0, 5) // "hello"
//
// # Exporting metrics
//
//	met := prom.New(nil, "pagecache", "demo", nil) // implements Metrics
//	m, _ := cache.NewManager(cache.Options{..., Metrics: met})
//
// # Thread-safety
//
// All methods on Cache and Manager are safe for concurrent use. A guard
// belongs to the goroutine that acquired it; release it before fetching
// another page from the same cache, since the lookup scan and the evictor
// may need the slot it holds.
package cache
