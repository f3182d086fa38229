package cache

import (
	"context"

	"github.com/IvanBrykalov/pagecache/page"
)

// Manager is the page-range façade used by the storage layer above the
// cache. Every call acquires the slot guard it needs and releases it
// before returning, on every path.
type Manager struct {
	cache *Cache
}

var _ Pager = (*Manager)(nil)

// NewManager constructs a Manager over a new Cache built from opt.
func NewManager(opt Options) (*Manager, error) {
	c, err := New(opt)
	if err != nil {
		return nil, err
	}
	return &Manager{cache: c}, nil
}

// Cache returns the underlying cache.
func (m *Manager) Cache() *Cache { return m.cache }

// ReadPageAt returns length bytes of page id starting at seek. A bounds
// violation is returned unchanged as a page-tier error.
func (m *Manager) ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error) {
	g, err := m.cache.FetchEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.ReadAt(seek, length)
}

// WritePageAt writes data into page id starting at seek.
func (m *Manager) WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error {
	g, err := m.cache.FetchMutEntry(ctx, id)
	if err != nil {
		return err
	}
	defer g.Release()
	return g.WriteAt(seek, data)
}

// ViewPage runs fn with shared access to page id. If fn panics the guard
// is released and ErrPoisonedEntry is returned; the page is left as is
// since fn could not modify it.
func (m *Manager) ViewPage(ctx context.Context, id page.ID, fn func(PageReader) error) (err error) {
	g, err := m.cache.FetchEntry(ctx, id)
	if err != nil {
		return err
	}
	defer g.Release()
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: ErrPoisonedEntry, ID: id, Err: panicError(r)}
		}
	}()
	return fn(g)
}

// UpdatePage runs fn with exclusive access to page id, so read-modify-write
// sequences are atomic with respect to other callers. If fn panics the
// page may be half-written: the slot is invalidated, unflushed writes are
// discarded, and ErrPoisonedEntry is returned. The next fetch of id
// reloads it from the store.
func (m *Manager) UpdatePage(ctx context.Context, id page.ID, fn func(PageWriter) error) (err error) {
	g, err := m.cache.FetchMutEntry(ctx, id)
	if err != nil {
		return err
	}
	s := g.s
	defer g.Release()
	defer func() {
		if r := recover(); r != nil {
			err = m.cache.poison(s, id, r)
		}
	}()
	return fn(g)
}

// Flush writes page id back to the store if it is resident and dirty.
func (m *Manager) Flush(ctx context.Context, id page.ID) error { return m.cache.Flush(ctx, id) }

// FlushAll writes every dirty resident page back to the store.
func (m *Manager) FlushAll(ctx context.Context) error { return m.cache.FlushAll(ctx) }

// Stats returns the cache counters.
func (m *Manager) Stats() Stats { return m.cache.Stats() }

// Close flushes dirty pages and closes the cache.
func (m *Manager) Close(ctx context.Context) error { return m.cache.Close(ctx) }
