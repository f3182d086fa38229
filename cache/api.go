package cache

import (
	"context"

	"github.com/IvanBrykalov/pagecache/page"
)

// Pager is the page-level interface consumed by table/record code.
// *Manager implements it; all methods are safe for concurrent use.
//
// Reads and writes may load the page from the backing store as a side
// effect, evicting another page (and flushing it first if dirty).
type Pager interface {
	// ReadPageAt returns a copy of length bytes of page id from seek.
	ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error)

	// WritePageAt copies data into page id at seek and marks it dirty.
	WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error

	// ViewPage runs fn under the page's read lock.
	ViewPage(ctx context.Context, id page.ID, fn func(PageReader) error) error

	// UpdatePage runs fn under the page's write lock.
	UpdatePage(ctx context.Context, id page.ID, fn func(PageWriter) error) error

	// Flush writes page id back to the store if it is resident and dirty.
	Flush(ctx context.Context, id page.ID) error

	// FlushAll writes every dirty resident page back.
	FlushAll(ctx context.Context) error

	// Close flushes dirty pages and rejects further fetches.
	Close(ctx context.Context) error
}
