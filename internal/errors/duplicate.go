package errors

import (
	stdErrors "errors"
	"fmt"
)

// DuplicateBookError is returned when a book with the same external id
// already exists. Re-ingesting a book is rejected, never upserted.
type DuplicateBookError struct {
	BookID string
	Err    error
}

func (e *DuplicateBookError) Error() string {
	return fmt.Sprintf("book %s already exists: %v", e.BookID, e.Err)
}

func (e *DuplicateBookError) Unwrap() error {
	return e.Err
}

// NewDuplicateBookError wraps the storage error that reported the collision.
func NewDuplicateBookError(bookID string, err error) *DuplicateBookError {
	return &DuplicateBookError{BookID: bookID, Err: err}
}

// IsDuplicateBookError reports whether err is a DuplicateBookError (even when wrapped).
func IsDuplicateBookError(err error) bool {
	var dupErr *DuplicateBookError
	return stdErrors.As(err, &dupErr)
}
