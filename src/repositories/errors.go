package repositories

import (
	"errors"
	"fmt"
)

// TransientStorageError marks a persistence failure the scheduler recovers
// from by retrying the dispatch on the next tick.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientStorageError{Op: op, Err: err}
}

// IsTransientStorageError reports whether err is a TransientStorageError.
func IsTransientStorageError(err error) bool {
	var storageErr *TransientStorageError
	return errors.As(err, &storageErr)
}
