package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/pagecache/page"
	"github.com/IvanBrykalov/pagecache/store"
	"github.com/IvanBrykalov/pagecache/store/storetest"
)

func TestMemstore_Conformance(t *testing.T) {
	storetest.TestFileManager(t, func(*testing.T) store.FileManager { return New() })
}

func TestMemstore_Counters(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(1, []byte("hello"))
	ctx := context.Background()

	got, err := s.FetchPage(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got[:5])
	require.NoError(t, s.FlushPage(ctx, 2, make([]byte, page.Size)))

	require.EqualValues(t, 1, s.Fetches())
	require.EqualValues(t, 1, s.Flushes())
	require.Equal(t, 2, s.Len())
}

func TestMemstore_InjectedFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	s := New()
	s.FailFetch = func(id page.ID) error {
		if id == 9 {
			return boom
		}
		return nil
	}
	s.FailFlush = func(page.ID) error { return boom }

	_, err := s.FetchPage(context.Background(), 9)
	require.ErrorIs(t, err, boom)
	_, err = s.FetchPage(context.Background(), 8)
	require.NoError(t, err)

	require.ErrorIs(t, s.FlushPage(context.Background(), 1, make([]byte, page.Size)), boom)
	require.Equal(t, 0, s.Len())
}
