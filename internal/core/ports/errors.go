package ports

import "fmt"

// StoreError reports a repository-layer fault (connectivity, constraint
// violation, timeout). It is surfaced to callers and never retried here.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err for operation op.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
