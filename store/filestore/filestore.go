// Package filestore is a store.FileManager over a single flat file. Page
// id lives at byte offset id*page.Size; reads past the end of the file
// yield zeros, so the file grows lazily as pages are flushed.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/store"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("filestore: closed")

// Store maps page ids onto a file. os.File ReadAt/WriteAt are positional
// and safe for concurrent use; mu only guards Close against in-flight I/O.
type Store struct {
	mu     sync.RWMutex
	f      *os.File
	path   string
	closed bool
	log    *zap.Logger
}

var _ store.FileManager = (*Store)(nil)

// Open opens or creates the page file at path. A nil logger disables logging.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("filestore: open %s: %w", path, err)
	}
	log.Debug("page file opened", zap.String("path", path))
	return &Store{f: f, path: path, log: log}, nil
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string { return s.path }

// FetchPage implements store.FileManager.
func (s *Store) FetchPage(ctx context.Context, id page.ID) ([]byte, error) {
	buf := make([]byte, page.Size)
	if err := s.readAt(ctx, id, 0, buf); err != nil {
		return nil, fmt.Errorf("filestore: fetch page %d: %w", id, err)
	}
	return buf, nil
}

// FlushPage implements store.FileManager.
func (s *Store) FlushPage(ctx context.Context, id page.ID, data []byte) error {
	if len(data) != page.Size {
		return fmt.Errorf("filestore: flush page %d: got %d bytes, want %d", id, len(data), page.Size)
	}
	if err := s.writeAt(ctx, id, 0, data); err != nil {
		return fmt.Errorf("filestore: flush page %d: %w", id, err)
	}
	return nil
}

// ReadPageAt implements store.FileManager.
func (s *Store) ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error) {
	if err := page.CheckRead(seek, length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if err := s.readAt(ctx, id, seek, buf); err != nil {
		return nil, fmt.Errorf("filestore: read page %d: %w", id, err)
	}
	return buf, nil
}

// WritePageAt implements store.FileManager.
func (s *Store) WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error {
	if err := page.CheckWrite(seek, len(data)); err != nil {
		return err
	}
	if err := s.writeAt(ctx, id, seek, data); err != nil {
		return fmt.Errorf("filestore: write page %d: %w", id, err)
	}
	return nil
}

// Sync commits the file contents to stable storage.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.f.Sync()
}

// Close syncs and closes the file. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	err := errors.Join(s.f.Sync(), s.f.Close())
	s.log.Debug("page file closed", zap.String("path", s.path), zap.Error(err))
	return err
}

// ---- helpers ----

func (s *Store) readAt(ctx context.Context, id page.ID, seek int, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	off, err := offset(id, seek)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	n, err := s.f.ReadAt(buf, off)
	if errors.Is(err, io.EOF) {
		// Beyond the end of the file: the rest of the page was never written.
		clear(buf[n:])
		return nil
	}
	return err
}

func (s *Store) writeAt(ctx context.Context, id page.ID, seek int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	off, err := offset(id, seek)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	_, err = s.f.WriteAt(data, off)
	return err
}

// offset returns the file offset of byte seek within page id.
func offset(id page.ID, seek int) (int64, error) {
	if uint64(id) > (math.MaxInt64-page.Size)/page.Size {
		return 0, fmt.Errorf("page id %d out of file range", id)
	}
	return int64(id)*page.Size + int64(seek), nil
}
