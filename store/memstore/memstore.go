// Package memstore is an in-memory store.FileManager. It keeps every page
// it has seen and counts fetches and flushes, which makes it the backing
// store of choice for tests and examples.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/store"
)

// Store keeps page images in a map guarded by an RWMutex.
type Store struct {
	mu    sync.RWMutex
	pages map[page.ID][]byte

	fetches atomic.Int64
	flushes atomic.Int64

	// FailFetch/FailFlush, when set, are consulted before each operation
	// and may inject an error. Set them before the store is shared.
	FailFetch func(id page.ID) error
	FailFlush func(id page.ID) error
}

var _ store.FileManager = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{pages: make(map[page.ID][]byte)}
}

// Put seeds the store with a page image (zero-padded to page.Size).
func (s *Store) Put(id page.ID, data []byte) {
	buf := make([]byte, page.Size)
	copy(buf, data)
	s.mu.Lock()
	s.pages[id] = buf
	s.mu.Unlock()
}

// FetchPage implements store.FileManager.
func (s *Store) FetchPage(ctx context.Context, id page.ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.fetches.Add(1)
	if s.FailFetch != nil {
		if err := s.FailFetch(id); err != nil {
			return nil, err
		}
	}
	out := make([]byte, page.Size)
	s.mu.RLock()
	copy(out, s.pages[id])
	s.mu.RUnlock()
	return out, nil
}

// FlushPage implements store.FileManager.
func (s *Store) FlushPage(ctx context.Context, id page.ID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) != page.Size {
		return fmt.Errorf("memstore: flush page %d: got %d bytes, want %d", id, len(data), page.Size)
	}
	s.flushes.Add(1)
	if s.FailFlush != nil {
		if err := s.FailFlush(id); err != nil {
			return err
		}
	}
	s.Put(id, data)
	return nil
}

// ReadPageAt implements store.FileManager.
func (s *Store) ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error) {
	if err := page.CheckRead(seek, length); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	s.mu.RLock()
	if buf, ok := s.pages[id]; ok {
		copy(out, buf[seek:seek+length])
	}
	s.mu.RUnlock()
	return out, nil
}

// WritePageAt implements store.FileManager.
func (s *Store) WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error {
	if err := page.CheckWrite(seek, len(data)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.pages[id]
	if !ok {
		buf = make([]byte, page.Size)
		s.pages[id] = buf
	}
	copy(buf[seek:], data)
	return nil
}

// Fetches returns how many times FetchPage was called.
func (s *Store) Fetches() int64 { return s.fetches.Load() }

// Flushes returns how many full-page flushes were accepted or attempted.
func (s *Store) Flushes() int64 { return s.flushes.Load() }

// Len returns the number of pages held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}
