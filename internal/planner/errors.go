// internal/planner/errors.go
package planner

import "fmt"

// PersistenceError reports that a committed change could not be written.
// The in-memory state already reflects the change and stays authoritative
// for the session, but it will not survive a restart unless a later save
// succeeds.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: changes were applied but not saved: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
