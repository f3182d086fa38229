package cache

import (
	"errors"

	"github.com/IvanBrykalov/pagecache/page"
)

// PageReader is the read-only view of a cached page.
type PageReader interface {
	ReadAt(seek, length int) ([]byte, error)
	IsDirty() bool
}

// PageWriter is the read-write view of a cached page handed to
// Manager.UpdatePage. It cannot replace the page image or clear its dirty
// flag; only a flush to the store does that.
type PageWriter interface {
	PageReader
	WriteAt(seek int, data []byte) error
}

var (
	_ PageReader = (*page.Page)(nil)
	_ PageReader = (*ReadGuard)(nil)
	_ PageWriter = (*WriteGuard)(nil)
)

var errReleased = &Error{Kind: ErrUnknown, Err: errors.New("guard used after Release")}

// ReadGuard holds a slot's read lock. Other readers of the same page may
// proceed concurrently; writers and evictors of that slot wait until
// Release. A guard belongs to one goroutine and must not be used after
// Release.
//
// Every ReadAt counts as one access of the page for LFU/LRU/MRU.
type ReadGuard struct {
	c  *Cache
	s  *slot
	id page.ID
}

// ID returns the page the guard was acquired for.
func (g *ReadGuard) ID() page.ID { return g.id }

// ReadAt reads from the guarded page.
func (g *ReadGuard) ReadAt(seek, length int) ([]byte, error) {
	if g.s == nil {
		return nil, errReleased
	}
	g.s.touch(g.c.clock.Add(1))
	return g.s.page.ReadAt(seek, length)
}

// IsDirty reports whether the guarded page has unflushed writes.
func (g *ReadGuard) IsDirty() bool { return g.s != nil && g.s.page.IsDirty() }

// Release unlocks the slot. Calling it more than once is a no-op.
func (g *ReadGuard) Release() {
	if g.s == nil {
		return
	}
	g.s.mu.RUnlock()
	g.s = nil
}

// WriteGuard holds a slot's write lock, excluding every other access to
// the slot until Release. Every ReadAt and WriteAt counts as one access.
type WriteGuard struct {
	c  *Cache
	s  *slot
	id page.ID
}

// ID returns the page the guard was acquired for.
func (g *WriteGuard) ID() page.ID { return g.id }

// ReadAt reads from the guarded page.
func (g *WriteGuard) ReadAt(seek, length int) ([]byte, error) {
	if g.s == nil {
		return nil, errReleased
	}
	g.s.touch(g.c.clock.Add(1))
	return g.s.page.ReadAt(seek, length)
}

// WriteAt writes into the guarded page, marking it dirty.
func (g *WriteGuard) WriteAt(seek int, data []byte) error {
	if g.s == nil {
		return errReleased
	}
	g.s.touch(g.c.clock.Add(1))
	return g.s.page.WriteAt(seek, data)
}

// IsDirty reports whether the guarded page has unflushed writes.
func (g *WriteGuard) IsDirty() bool { return g.s != nil && g.s.page.IsDirty() }

// Release unlocks the slot. Calling it more than once is a no-op.
func (g *WriteGuard) Release() {
	if g.s == nil {
		return
	}
	g.s.mu.Unlock()
	g.s = nil
}
