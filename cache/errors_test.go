package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/pagecache/page"
)

func TestFromPageError(t *testing.T) {
	t.Parallel()

	require.NoError(t, FromPageError(1, nil))

	read := &page.Error{Kind: page.ErrOutOfBoundsRead, Detail: "seek 5000, page size 4096"}
	err := FromPageError(1, read)
	require.ErrorIs(t, err, ErrFailedCacheRead)
	require.NotContains(t, err.Error(), "5000", "detail is dropped")

	write := &page.Error{Kind: page.ErrOutOfBoundsWrite}
	require.ErrorIs(t, FromPageError(2, write), ErrFailedCacheWrite)

	require.ErrorIs(t, FromPageError(3, &page.Error{Kind: page.ErrPageNotFound, ID: 3}), ErrUnknown)
	require.ErrorIs(t, FromPageError(3, errors.New("other")), ErrUnknown)

	var ce *Error
	require.True(t, errors.As(FromPageError(9, read), &ce))
	require.Equal(t, page.ID(9), ce.ID)
}

func TestToPageError(t *testing.T) {
	t.Parallel()

	require.NoError(t, ToPageError(nil))

	err := ToPageError(&Error{Kind: ErrLookupFailure, ID: 12})
	require.ErrorIs(t, err, page.ErrPageNotFound)
	var pe *page.Error
	require.True(t, errors.As(err, &pe))
	require.Equal(t, page.ID(12), pe.ID)

	for _, kind := range []error{ErrFetchFailure, ErrFailedCacheRead, ErrFailedCacheWrite, ErrPoisonedEntry, ErrStore, ErrClosed, ErrUnknown} {
		require.ErrorIs(t, ToPageError(&Error{Kind: kind, ID: 1}), page.ErrUnknown, kind.Error())
	}
	require.ErrorIs(t, ToPageError(errors.New("foreign")), page.ErrUnknown)
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk gone")
	err := &Error{Kind: ErrStore, ID: 7, Err: cause}
	require.Contains(t, err.Error(), "7")
	require.Contains(t, err.Error(), "disk gone")
	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, err, cause)

	ff := &Error{Kind: ErrFetchFailure, ID: 3, Attempts: 4}
	require.Contains(t, ff.Error(), "after 4 attempts")

	require.Equal(t, ErrUnknown.Error(), (&Error{}).Error())
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	require.ErrorIs(t, panicError(inner), inner)
	require.Contains(t, panicError("text").Error(), "text")
}
