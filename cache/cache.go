package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/pagecache/internal/singleflight"
	"github.com/IvanBrykalov/pagecache/internal/util"
	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/policy"
	"github.com/IvanBrykalov/pagecache/policy/fifo"
	"github.com/IvanBrykalov/pagecache/policy/lfu"
	"github.com/IvanBrykalov/pagecache/policy/lru"
	"github.com/IvanBrykalov/pagecache/policy/mru"
	"github.com/IvanBrykalov/pagecache/store"
)

// Cache is a fixed pool of page slots in front of a store.FileManager.
// All methods are safe for concurrent use by multiple goroutines.
//
// There is no cache-wide lock: lookups scan the slots taking each slot's
// read lock in turn, and a hit is re-verified once the slot lock is held.
// A goroutine must release its guard before fetching another page, since
// the scan may need the slot it holds.
type Cache struct {
	slots            []*slot
	selector         policy.Selector
	kind             policy.Kind
	store            store.FileManager
	maxFetchAttempts int

	// loads coalesces concurrent misses per page id, so at most one slot
	// is ever valid for a given id.
	loads  singleflight.Group[page.ID]
	closed atomic.Bool

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_        util.CacheLinePad
	clock    util.PaddedAtomicUint64 // access sequence for LRU/MRU
	hits     util.PaddedAtomicUint64
	misses   util.PaddedAtomicUint64
	evicts   util.PaddedAtomicUint64
	flushes  util.PaddedAtomicUint64
	resident atomic.Int64

	metrics Metrics
	log     *zap.Logger
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Capacity  int
	Resident  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Flushes   uint64
}

// New constructs a cache with the provided Options.
// Slots start empty and are filled on demand.
func New(opt Options) (*Cache, error) {
	if opt.Capacity <= 0 {
		return nil, errors.New("cache: Capacity must be > 0")
	}
	if opt.MaxFetchAttempts <= 0 {
		return nil, errors.New("cache: MaxFetchAttempts must be > 0")
	}
	if opt.Store == nil {
		return nil, errors.New("cache: Store is required")
	}
	pol, err := policyFor(opt.Policy)
	if err != nil {
		return nil, err
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	slots := make([]*slot, opt.Capacity)
	for i := range slots {
		slots[i] = &slot{idx: i}
	}
	c := &Cache{
		slots:            slots,
		selector:         pol.New(slotHooks{slots: slots}),
		kind:             opt.Policy,
		store:            opt.Store,
		maxFetchAttempts: opt.MaxFetchAttempts,
		metrics:          opt.Metrics,
		log: opt.Logger.Named("pagecache").With(
			zap.Stringer("policy", opt.Policy),
			zap.Int("capacity", opt.Capacity),
		),
	}
	c.metrics.Resident(0)
	return c, nil
}

func policyFor(k policy.Kind) (policy.Policy, error) {
	switch k {
	case policy.FIFO:
		return fifo.New(), nil
	case policy.LFU:
		return lfu.New(), nil
	case policy.LRU:
		return lru.New(), nil
	case policy.MRU:
		return mru.New(), nil
	}
	return nil, fmt.Errorf("cache: unsupported eviction policy %v", k)
}

// Capacity returns the fixed number of slots.
func (c *Cache) Capacity() int { return len(c.slots) }

// Policy returns the active eviction policy.
func (c *Cache) Policy() policy.Kind { return c.kind }

// FetchEntry returns a read guard on the slot holding id, loading the page
// from the store on a miss. The caller must Release the guard.
func (c *Cache) FetchEntry(ctx context.Context, id page.ID) (*ReadGuard, error) {
	s, err := c.fetch(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return &ReadGuard{c: c, s: s, id: id}, nil
}

// FetchMutEntry is FetchEntry with an exclusive (write) guard.
func (c *Cache) FetchMutEntry(ctx context.Context, id page.ID) (*WriteGuard, error) {
	s, err := c.fetch(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return &WriteGuard{c: c, s: s, id: id}, nil
}

// fetch runs the bounded lookup/evict loop and returns the slot for id
// locked in the requested mode.
func (c *Cache) fetch(ctx context.Context, id page.ID, exclusive bool) (*slot, error) {
	if c.closed.Load() {
		return nil, &Error{Kind: ErrClosed, ID: id}
	}
	for attempt := 0; attempt < c.maxFetchAttempts; attempt++ {
		idx, err := c.lookup(id)
		if err != nil {
			c.misses.Add(1)
			c.metrics.Miss()
			if err := c.load(ctx, id); err != nil {
				return nil, err
			}
			continue
		}

		s := c.slots[idx]
		if exclusive {
			s.mu.Lock()
		} else {
			s.mu.RLock()
		}
		// The slot may have been reloaded between the scan and the lock.
		if s.holds(id) {
			// Close may have run while we waited for the lock.
			if c.closed.Load() {
				unlock(s, exclusive)
				return nil, &Error{Kind: ErrClosed, ID: id}
			}
			s.stamp(c.clock.Add(1))
			c.hits.Add(1)
			c.metrics.Hit()
			return s, nil
		}
		unlock(s, exclusive)
	}

	c.metrics.FetchFailure()
	c.log.Warn("fetch attempts exhausted",
		zap.Uint64("page_id", uint64(id)),
		zap.Int("attempts", c.maxFetchAttempts))
	return nil, &Error{Kind: ErrFetchFailure, ID: id, Attempts: c.maxFetchAttempts}
}

func unlock(s *slot, exclusive bool) {
	if exclusive {
		s.mu.Unlock()
	} else {
		s.mu.RUnlock()
	}
}

// lookup scans every slot for a valid mapping of id. The scan is not
// atomic across slots: it may miss a page loaded behind it or report a
// slot that is reloaded right after; fetch covers both cases.
func (c *Cache) lookup(id page.ID) (int, error) {
	for i, s := range c.slots {
		s.mu.RLock()
		ok := s.holds(id)
		s.mu.RUnlock()
		if ok {
			return i, nil
		}
	}
	return -1, &Error{Kind: ErrLookupFailure, ID: id}
}

// load brings id into the cache unless a concurrent load already did.
func (c *Cache) load(ctx context.Context, id page.ID) error {
	_, err := c.loads.Do(ctx, id, func() error {
		// double-check after flight join
		if _, err := c.lookup(id); err == nil {
			return nil
		}
		return c.evictAndReplace(ctx, id)
	})
	return err
}

// evictAndReplace overwrites the policy's victim with the page for id.
// The victim stays write-locked for the whole flush/fetch so no reader
// sees a torn page. A dirty victim is flushed first; if that flush fails
// the victim keeps its page and the load is abandoned.
func (c *Cache) evictAndReplace(ctx context.Context, id page.ID) (err error) {
	idx := c.selector.Victim()
	if idx < 0 || idx >= len(c.slots) {
		return &Error{Kind: ErrUnknown, ID: id, Err: fmt.Errorf("policy returned slot %d", idx)}
	}
	s := c.slots[idx]
	s.claimed.Store(true)
	defer s.claimed.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = c.poison(s, id, r)
		}
	}()

	wasValid, oldID := s.valid.Load(), s.id
	if wasValid && s.page.IsDirty() {
		if err := c.store.FlushPage(ctx, oldID, s.page.Bytes()); err != nil {
			c.log.Warn("flush of dirty victim failed",
				zap.Uint64("page_id", uint64(oldID)), zap.Int("slot", idx), zap.Error(err))
			return &Error{Kind: ErrStore, ID: oldID, Err: err}
		}
		c.flushes.Add(1)
		c.metrics.Flush()
	}

	data, err := c.store.FetchPage(ctx, id)
	if err == nil && len(data) != page.Size {
		err = fmt.Errorf("store returned %d bytes, want %d", len(data), page.Size)
	}
	if err != nil {
		c.log.Warn("page fetch failed",
			zap.Uint64("page_id", uint64(id)), zap.Int("slot", idx), zap.Error(err))
		return &Error{Kind: ErrStore, ID: id, Err: err}
	}

	s.fill(id, data, c.clock.Add(1))
	if wasValid {
		c.evicts.Add(1)
		c.metrics.Evict(EvictPolicy)
	} else {
		c.metrics.Resident(int(c.resident.Add(1)))
	}
	c.log.Debug("page loaded",
		zap.Uint64("page_id", uint64(id)),
		zap.Int("slot", idx),
		zap.Bool("evicted", wasValid),
		zap.Uint64("evicted_page_id", uint64(oldID)))
	return nil
}

// poison invalidates a slot whose holder panicked. Caller holds s.mu
// exclusively. The slot is usable again on the next load.
func (c *Cache) poison(s *slot, id page.ID, r any) error {
	if s.valid.Load() {
		c.metrics.Resident(int(c.resident.Add(-1)))
	}
	s.invalidate()
	c.metrics.Evict(EvictPoisoned)
	c.log.Error("panic while holding cache entry; slot invalidated",
		zap.Uint64("page_id", uint64(id)), zap.Int("slot", s.idx), zap.Any("panic", r))
	return &Error{Kind: ErrPoisonedEntry, ID: id, Err: panicError(r)}
}

// Flush writes page id back to the store if it is resident and dirty.
// It returns ErrLookupFailure if id is not resident.
func (c *Cache) Flush(ctx context.Context, id page.ID) error {
	idx, err := c.lookup(id)
	if err != nil {
		return err
	}
	s := c.slots[idx]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.holds(id) {
		return &Error{Kind: ErrLookupFailure, ID: id}
	}
	return c.flushLocked(ctx, s)
}

// FlushAll writes every resident dirty page back to the store. It visits
// all slots even if some flushes fail and returns the joined errors.
func (c *Cache) FlushAll(ctx context.Context) error {
	var errs []error
	for _, s := range c.slots {
		s.mu.Lock()
		if s.valid.Load() {
			if err := c.flushLocked(ctx, s); err != nil {
				errs = append(errs, err)
			}
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// flushLocked flushes a valid slot if dirty. Caller holds s.mu exclusively.
func (c *Cache) flushLocked(ctx context.Context, s *slot) error {
	if !s.page.IsDirty() {
		return nil
	}
	img := s.page.Bytes()
	if err := c.store.FlushPage(ctx, s.id, img); err != nil {
		return &Error{Kind: ErrStore, ID: s.id, Err: err}
	}
	// The store now holds this image; the page is clean again.
	s.page = page.FromImage(img)
	c.flushes.Add(1)
	c.metrics.Flush()
	return nil
}

// Resident lists the page ids currently cached, in slot order.
func (c *Cache) Resident() []page.ID {
	ids := make([]page.ID, 0, len(c.slots))
	for _, s := range c.slots {
		s.mu.RLock()
		if s.valid.Load() {
			ids = append(ids, s.id)
		}
		s.mu.RUnlock()
	}
	return ids
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Capacity:  len(c.slots),
		Resident:  int(c.resident.Load()),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Flushes:   c.flushes.Load(),
	}
}

// Close flushes every dirty page and rejects further fetches with
// ErrClosed, including fetches already waiting for a slot lock. Guards
// already handed out stay usable; FlushAll waits for each one to be
// released, so their writes are flushed too. Close must not be called
// while the caller itself holds a guard.
func (c *Cache) Close(ctx context.Context) error {
	if c.closed.Swap(true) {
		return &Error{Kind: ErrClosed}
	}
	err := c.FlushAll(ctx)
	c.log.Debug("cache closed", zap.Error(err))
	return err
}
