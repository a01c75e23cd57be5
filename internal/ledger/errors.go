package ledger

import (
	"errors"
	"fmt"
)

// Business-rule rejections. Handlers map these to 4xx responses; none of them
// leave any partial mutation behind.
var (
	ErrStockNotFound         = errors.New("stock not found")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrInsufficientStock     = errors.New("not enough units available")
	ErrAlreadyClosed         = errors.New("assignment has already been checked in")
	ErrCapacityBelowAssigned = errors.New("capacity cannot drop below the quantity currently checked out")
	ErrValidation            = errors.New("invalid request")
)

// StorageError wraps a database failure so callers can tell transient
// infrastructure problems apart from business rejections. A caller may retry
// the whole operation once; never a single statement inside it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
