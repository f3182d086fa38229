package page

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// outOfBounds are (seek, length) pairs that violate one bound each.
var outOfBounds = []struct {
	name         string
	seek, length int
}{
	{"seek past end", Size + 1, 0},
	{"length past size", 0, Size + 1},
	{"sum past end", Size / 2, Size/2 + 1},
	{"one byte over", Size - 1, 2},
	{"negative seek", -1, 1},
}

func TestPage_NewIsZeroAndClean(t *testing.T) {
	t.Parallel()

	p := New()
	require.False(t, p.IsDirty())

	got, err := p.ReadAt(0, Size)
	require.NoError(t, err)
	require.Equal(t, make([]byte, Size), got)
}

func TestPage_WriteThenRead(t *testing.T) {
	t.Parallel()

	p := New()
	require.NoError(t, p.WriteAt(0, bytes.Repeat([]byte{1}, Size)))
	require.True(t, p.IsDirty())

	got, err := p.ReadAt(0, Size)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{1}, Size), got)
}

func TestPage_WriteAtOffset(t *testing.T) {
	t.Parallel()

	p := New()
	require.NoError(t, p.WriteAt(Size/2, bytes.Repeat([]byte{1}, Size/2)))

	want := append(make([]byte, Size/2), bytes.Repeat([]byte{1}, Size/2)...)
	got, err := p.ReadAt(0, Size)
	require.NoError(t, err)
	require.Equal(t, want, got)

	half, err := p.ReadAt(Size/2, Size/2)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{1}, Size/2), half)
}

// The end of the page is an inclusive endpoint.
func TestPage_Boundary(t *testing.T) {
	t.Parallel()

	p := New()
	require.NoError(t, p.WriteAt(Size-2, []byte{'x', 'y'}))

	err := p.WriteAt(Size-1, []byte{'x', 'y'})
	require.ErrorIs(t, err, ErrOutOfBoundsWrite)

	got, err := p.ReadAt(Size, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPage_OutOfBoundsRead(t *testing.T) {
	t.Parallel()

	p := New()
	for _, tc := range outOfBounds {
		_, err := p.ReadAt(tc.seek, tc.length)
		require.ErrorIs(t, err, ErrOutOfBoundsRead, tc.name)

		var pe *Error
		require.True(t, errors.As(err, &pe), tc.name)
		require.NotEmpty(t, pe.Detail, tc.name)
	}
}

func TestPage_OutOfBoundsWriteLeavesPageUntouched(t *testing.T) {
	t.Parallel()

	p := New()
	for _, tc := range outOfBounds {
		if tc.length < 0 {
			continue
		}
		err := p.WriteAt(tc.seek, bytes.Repeat([]byte{7}, tc.length))
		require.ErrorIs(t, err, ErrOutOfBoundsWrite, tc.name)
	}
	require.False(t, p.IsDirty(), "failed writes must not dirty the page")

	got, err := p.ReadAt(0, Size)
	require.NoError(t, err)
	require.Equal(t, make([]byte, Size), got)
}

// Dirty never reverts through page operations.
func TestPage_DirtyIsSticky(t *testing.T) {
	t.Parallel()

	p := New()
	require.NoError(t, p.WriteAt(10, []byte{1}))
	_, _ = p.ReadAt(0, 10)
	_ = p.WriteAt(Size, []byte{1})
	require.True(t, p.IsDirty())
}

func TestFromImage_IsCleanAndPadded(t *testing.T) {
	t.Parallel()

	p := FromImage([]byte{1, 2, 3})
	require.False(t, p.IsDirty())

	got := p.Bytes()
	require.Equal(t, []byte{1, 2, 3}, got[:3])
	require.Equal(t, make([]byte, Size-3), got[3:])

	long := FromImage(bytes.Repeat([]byte{9}, Size+10))
	require.Equal(t, bytes.Repeat([]byte{9}, Size), long.Bytes())
}

func TestError_Messages(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: ErrPageNotFound, ID: 42}
	require.Contains(t, err.Error(), "42")
	require.ErrorIs(t, err, ErrPageNotFound)

	require.Equal(t, ErrUnknown.Error(), (&Error{}).Error())
}

func FuzzPage_WriteRead(f *testing.F) {
	f.Add(0, []byte("a"))
	f.Add(Size-2, []byte("xy"))
	f.Add(Size-1, []byte("xy"))
	f.Add(Size, []byte{})

	f.Fuzz(func(t *testing.T, seek int, data []byte) {
		p := New()
		err := p.WriteAt(seek, data)
		inBounds := seek >= 0 && seek <= Size && len(data) <= Size && seek+len(data) <= Size
		if !inBounds {
			if !errors.Is(err, ErrOutOfBoundsWrite) {
				t.Fatalf("seek=%d len=%d: want out of bounds, got %v", seek, len(data), err)
			}
			return
		}
		if err != nil {
			t.Fatalf("seek=%d len=%d: %v", seek, len(data), err)
		}
		got, err := p.ReadAt(seek, len(data))
		if err != nil || !bytes.Equal(got, data) {
			t.Fatalf("round trip mismatch: err=%v", err)
		}
	})
}
