package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches every *Error.
	ErrStorage = errors.New("storage error")
	// ErrSlugTaken is wrapped into the cause when a write collides with the
	// unique slug index.
	ErrSlugTaken = errors.New("slug already exists")
)

// Kind classifies a storage failure.
type Kind int

const (
	KindQuery Kind = iota
	KindConnection
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection acquisition failed"
	case KindTransaction:
		return "transaction aborted"
	default:
		return "query failed"
	}
}

// Error is the single error type crossing the storage port. The underlying
// cause is kept for errors.Is/As and diagnostics.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("storage: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// QueryFailed wraps err as a KindQuery failure of op.
func QueryFailed(op string, err error) error {
	return &Error{Op: op, Kind: KindQuery, Err: err}
}

// ConnectionFailed wraps err as a KindConnection failure of op.
func ConnectionFailed(op string, err error) error {
	return &Error{Op: op, Kind: KindConnection, Err: err}
}

// TransactionAborted wraps err as a KindTransaction failure of op.
func TransactionAborted(op string, err error) error {
	return &Error{Op: op, Kind: KindTransaction, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
