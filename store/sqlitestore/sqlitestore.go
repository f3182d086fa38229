// Package sqlitestore is a store.FileManager keeping one page per row of a
// SQLite table, using the pure Go modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/store"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS pages (
	id   INTEGER PRIMARY KEY,
	data BLOB    NOT NULL
)`

const (
	selectPage = `SELECT data FROM pages WHERE id = ?`
	upsertPage = `INSERT INTO pages (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`
)

// Store is safe for concurrent use; database/sql pools connections and the
// pool is capped at one so ":memory:" databases stay a single database and
// read-modify-write in WritePageAt is serialized.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ store.FileManager = (*Store)(nil)

// Open opens the database named by dsn (a file path or ":memory:") and
// creates the pages table if needed. A nil logger disables logging.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: create schema: %w", err)
	}
	log.Debug("sqlite page store opened", zap.String("dsn", dsn))
	return &Store{db: db, log: log}, nil
}

// FetchPage implements store.FileManager.
func (s *Store) FetchPage(ctx context.Context, id page.ID) ([]byte, error) {
	key, err := rowID(id)
	if err != nil {
		return nil, err
	}
	buf, err := s.load(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: fetch page %d: %w", id, err)
	}
	return buf, nil
}

// FlushPage implements store.FileManager.
func (s *Store) FlushPage(ctx context.Context, id page.ID, data []byte) error {
	if len(data) != page.Size {
		return fmt.Errorf("sqlitestore: flush page %d: got %d bytes, want %d", id, len(data), page.Size)
	}
	key, err := rowID(id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertPage, key, data); err != nil {
		return fmt.Errorf("sqlitestore: flush page %d: %w", id, err)
	}
	return nil
}

// ReadPageAt implements store.FileManager.
func (s *Store) ReadPageAt(ctx context.Context, id page.ID, seek, length int) ([]byte, error) {
	if err := page.CheckRead(seek, length); err != nil {
		return nil, err
	}
	buf, err := s.FetchPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return buf[seek : seek+length], nil
}

// WritePageAt implements store.FileManager. The page is read, patched and
// written back inside one transaction.
func (s *Store) WritePageAt(ctx context.Context, id page.ID, seek int, data []byte) error {
	if err := page.CheckWrite(seek, len(data)); err != nil {
		return err
	}
	key, err := rowID(id)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: write page %d: %w", id, err)
	}
	buf, err := s.load(ctx, tx, key)
	if err == nil {
		copy(buf[seek:], data)
		_, err = tx.ExecContext(ctx, upsertPage, key, buf)
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlitestore: write page %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: write page %d: commit: %w", id, err)
	}
	return nil
}

// Pages returns the number of stored pages.
func (s *Store) Pages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	err := s.db.Close()
	s.log.Debug("sqlite page store closed", zap.Error(err))
	return err
}

// ---- helpers ----

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// load returns the stored image for key, or a zero page if absent.
func (s *Store) load(ctx context.Context, q queryer, key int64) ([]byte, error) {
	var stored []byte
	err := q.QueryRowContext(ctx, selectPage, key).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	buf := make([]byte, page.Size)
	copy(buf, stored)
	return buf, nil
}

func rowID(id page.ID) (int64, error) {
	if uint64(id) > math.MaxInt64 {
		return 0, fmt.Errorf("sqlitestore: page id %d exceeds SQLite integer range", id)
	}
	return int64(id), nil
}
