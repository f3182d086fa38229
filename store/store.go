// Package store defines the backing-store contract consumed by the page
// cache. Implementations live in the sub-packages:
//
//   - memstore: in-memory, for tests and examples
//   - filestore: one flat file, page id at offset id*page.Size
//   - sqlitestore: one row per page in a SQLite database
package store

import (
	"context"

	"github.com/IvanBrykalov/pagecache/page"
)

// FileManager supplies durable page images to the cache on a miss and
// accepts dirty pages on flush.
//
// Implementations must be safe for concurrent use: several goroutines may
// evict, load and flush different pages at the same time.
type FileManager interface {
	// FetchPage returns exactly page.Size bytes for id. Pages never
	// written read as zeros.
	FetchPage(ctx context.Context, id page.ID) ([]byte, error)

	// FlushPage durably stores a full page image for id. len(data) must
	// be page.Size.
	FlushPage(ctx context.Context, id page.ID, data []byte) error

	// ReadPageAt reads a byte range of a page directly from the store,
	// bypassing any cache. Bounds errors are page-tier errors.
	ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error)

	// WritePageAt writes a byte range of a page directly to the store,
	// bypassing any cache.
	WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error
}
