package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a table or object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for keys that are empty or escape the store,
	// such as "../secrets".
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrAccessDenied is returned when the bucket policy refuses the read.
	ErrAccessDenied = errors.New("access denied")
)

// StorageError records the operation and key that failed. Use errors.Is with
// the sentinel errors above to inspect it.
type StorageError struct {
	Op  string // "Get", "List" or "Latest"
	Key string // Key, prefix or table name
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidKey reports whether err was caused by a rejected key.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsPermanent reports whether retrying the operation cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrInvalidKey)
}
