package page

import (
	"errors"
	"fmt"
)

// Page-tier error kinds. Match them with errors.Is; the concrete error is
// always a *Error.
var (
	ErrOutOfBoundsRead  = errors.New("page: read outside of page dimensions")
	ErrOutOfBoundsWrite = errors.New("page: write outside of page dimensions")
	ErrPageNotFound     = errors.New("page: unable to fetch page")
	ErrUnknown          = errors.New("page: unknown page error")
)

// Error is a page-tier failure.
//   - Kind is one of the Err* sentinels above.
//   - ID is set for ErrPageNotFound.
//   - Detail names the violated bound for out-of-bounds errors.
type Error struct {
	Kind   error
	ID     ID
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrOutOfBoundsRead, ErrOutOfBoundsWrite:
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	case ErrPageNotFound:
		return fmt.Sprintf("%v: %d", e.Kind, e.ID)
	}
	if e.Kind == nil {
		return ErrUnknown.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes the kind so errors.Is(err, ErrOutOfBoundsRead) works.
func (e *Error) Unwrap() error { return e.Kind }
