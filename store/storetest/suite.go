// Package storetest is a conformance suite for store.FileManager
// implementations.
package storetest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/store"
)

// TestFileManager runs every conformance check against a fresh store
// obtained from newStore for each subtest.
func TestFileManager(t *testing.T, newStore func(t *testing.T) store.FileManager) {
	t.Run("UnwrittenPageIsZero", func(t *testing.T) {
		testUnwrittenPageIsZero(t, newStore(t))
	})
	t.Run("FlushThenFetch", func(t *testing.T) {
		testFlushThenFetch(t, newStore(t))
	})
	t.Run("FlushRejectsShortImage", func(t *testing.T) {
		testFlushRejectsShortImage(t, newStore(t))
	})
	t.Run("RangedReadWrite", func(t *testing.T) {
		testRangedReadWrite(t, newStore(t))
	})
	t.Run("RangedBounds", func(t *testing.T) {
		testRangedBounds(t, newStore(t))
	})
	t.Run("ConcurrentFlushes", func(t *testing.T) {
		testConcurrentFlushes(t, newStore(t))
	})
	t.Run("CancelledContext", func(t *testing.T) {
		testCancelledContext(t, newStore(t))
	})
}

func testUnwrittenPageIsZero(t *testing.T, s store.FileManager) {
	got, err := s.FetchPage(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, make([]byte, page.Size), got)
}

func testFlushThenFetch(t *testing.T, s store.FileManager) {
	ctx := context.Background()
	img := bytes.Repeat([]byte{0xAB}, page.Size)
	require.NoError(t, s.FlushPage(ctx, 3, img))

	got, err := s.FetchPage(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, img, got)

	// Neighbours stay untouched.
	for _, id := range []page.ID{2, 4} {
		other, err := s.FetchPage(ctx, id)
		require.NoError(t, err)
		require.Equal(t, make([]byte, page.Size), other, "page %d", id)
	}
}

func testFlushRejectsShortImage(t *testing.T, s store.FileManager) {
	require.Error(t, s.FlushPage(context.Background(), 1, []byte{1, 2, 3}))
}

func testRangedReadWrite(t *testing.T, s store.FileManager) {
	ctx := context.Background()
	require.NoError(t, s.WritePageAt(ctx, 5, page.Size-2, []byte{'x', 'y'}))

	got, err := s.ReadPageAt(ctx, 5, page.Size-4, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 'x', 'y'}, got)

	full, err := s.FetchPage(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{'x', 'y'}, full[page.Size-2:])
}

func testRangedBounds(t *testing.T, s store.FileManager) {
	ctx := context.Background()
	_, err := s.ReadPageAt(ctx, 1, page.Size-1, 2)
	require.ErrorIs(t, err, page.ErrOutOfBoundsRead)

	err = s.WritePageAt(ctx, 1, page.Size-1, []byte{1, 2})
	require.ErrorIs(t, err, page.ErrOutOfBoundsWrite)
}

func testConcurrentFlushes(t *testing.T, s store.FileManager) {
	ctx := context.Background()
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		id := page.ID(i)
		g.Go(func() error {
			return s.FlushPage(ctx, id, bytes.Repeat([]byte{byte(i + 1)}, page.Size))
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < 16; i++ {
		got, err := s.FetchPage(ctx, page.ID(i))
		require.NoError(t, err)
		require.Equal(t, bytes.Repeat([]byte{byte(i + 1)}, page.Size), got)
	}
}

func testCancelledContext(t *testing.T, s store.FileManager) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.FetchPage(ctx, 1)
	require.Error(t, err)
}
