// Package page implements the fixed-size in-memory page image cached by
// package cache: a bounds-checked byte buffer with a dirty flag.
package page

import "fmt"

// Size is the number of bytes in every page.
const Size = 4096

// ID identifies a logical page in the backing store.
type ID uint64

// Page is one page image. The zero value is a valid, all-zero, clean page.
//
// Page is not safe for concurrent use; the cache serializes access through
// the lock of the slot that owns it.
type Page struct {
	data  [Size]byte
	dirty bool
}

// New allocates a zeroed, clean page.
func New() *Page { return &Page{} }

// ReadAt returns a copy of length bytes starting at seek.
// The range must lie within [0, Size]; seek+length == Size is valid.
func (p *Page) ReadAt(seek, length int) ([]byte, error) {
	if err := CheckRead(seek, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, p.data[seek:seek+length])
	return out, nil
}

// WriteAt copies data into the page starting at seek and marks the page
// dirty. Bounds are checked before any byte is written.
func (p *Page) WriteAt(seek int, data []byte) error {
	if err := CheckWrite(seek, len(data)); err != nil {
		return err
	}
	copy(p.data[seek:], data)
	p.dirty = true
	return nil
}

// IsDirty reports whether the page has been written since it was loaded.
func (p *Page) IsDirty() bool { return p.dirty }

// FromImage returns a clean page holding data, zero-padded if short and
// truncated if long. No method on Page clears the dirty flag; a page only
// becomes clean again by being replaced with a fresh image.
func FromImage(data []byte) Page {
	var p Page
	copy(p.data[:], data)
	return p
}

// Bytes returns a copy of the full image.
func (p *Page) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, p.data[:])
	return out
}

// CheckRead validates a read of length bytes at seek, returning the same
// error ReadAt would.
func CheckRead(seek, length int) error {
	if detail, ok := checkRange(seek, length); !ok {
		return &Error{Kind: ErrOutOfBoundsRead, Detail: detail}
	}
	return nil
}

// CheckWrite validates a write of length bytes at seek.
func CheckWrite(seek, length int) error {
	if detail, ok := checkRange(seek, length); !ok {
		return &Error{Kind: ErrOutOfBoundsWrite, Detail: detail}
	}
	return nil
}

func checkRange(seek, length int) (string, bool) {
	switch {
	case seek < 0 || seek > Size:
		return fmt.Sprintf("seek %d, page size %d", seek, Size), false
	case length < 0 || length > Size:
		return fmt.Sprintf("length %d, page size %d", length, Size), false
	case seek+length > Size:
		return fmt.Sprintf("seek + length %d, page size %d", seek+length, Size), false
	}
	return "", true
}
