package cache

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/pagecache/page"
)

// Cache-tier error kinds. Match them with errors.Is; the concrete error is
// always a *Error.
var (
	ErrLookupFailure    = errors.New("cache: failed to lookup page")
	ErrFetchFailure     = errors.New("cache: failed to fetch page")
	ErrFailedCacheRead  = errors.New("cache: failed to read page")
	ErrFailedCacheWrite = errors.New("cache: failed to write to page")
	ErrPoisonedEntry    = errors.New("cache: cache entry is poisoned")
	ErrStore            = errors.New("cache: backing store failure")
	ErrClosed           = errors.New("cache: closed")
	ErrUnknown          = errors.New("cache: unknown cache error")
)

// Error is a cache-tier failure.
//   - Kind is one of the Err* sentinels above.
//   - ID is the page the operation was about.
//   - Attempts is set for ErrFetchFailure.
//   - Err is the underlying cause (store error, recovered panic), if any.
type Error struct {
	Kind     error
	ID       page.ID
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrUnknown
	}
	var msg string
	switch kind {
	case ErrFetchFailure:
		msg = fmt.Sprintf("%v %d after %d attempts", kind, e.ID, e.Attempts)
	case ErrClosed, ErrUnknown:
		msg = kind.Error()
	default:
		msg = fmt.Sprintf("%v %d", kind, e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// FromPageError narrows a page-tier error to the cache tier for page id.
// The conversion is intentionally lossy: out-of-bounds reads and writes
// become ErrFailedCacheRead/ErrFailedCacheWrite and lose their detail
// string; every other page error becomes ErrUnknown. nil maps to nil.
func FromPageError(id page.ID, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, page.ErrOutOfBoundsRead):
		return &Error{Kind: ErrFailedCacheRead, ID: id}
	case errors.Is(err, page.ErrOutOfBoundsWrite):
		return &Error{Kind: ErrFailedCacheWrite, ID: id}
	}
	return &Error{Kind: ErrUnknown, ID: id}
}

// ToPageError narrows a cache-tier error to the page tier. Only
// ErrLookupFailure survives (as page.ErrPageNotFound with its id);
// everything else, including fetch failures and store errors, collapses
// to page.ErrUnknown. nil maps to nil.
func ToPageError(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == ErrLookupFailure {
		return &page.Error{Kind: page.ErrPageNotFound, ID: ce.ID}
	}
	return &page.Error{Kind: page.ErrUnknown}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
