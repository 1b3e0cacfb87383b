package album

import (
	"errors"
	"fmt"
)

// ErrBlockedSubmission is returned by NewMemory when a draft is missing a
// title or media; the memory must not be added.
var ErrBlockedSubmission = errors.New("submission blocked")

// StorageReadError reports that the durable slot could not be read or
// parsed. The store still opens, with an empty album.
type StorageReadError struct {
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read album: %v", e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError reports that a mutation could not be persisted. The
// in-memory album keeps the mutation, so memory and disk have diverged.
type StorageWriteError struct {
	Op  string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
