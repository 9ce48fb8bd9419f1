// internal/ledger/errors.go
package ledger

import "errors"

var (
	ErrEventTypeRequired    = errors.New("event type is required")
	ErrDateRequired         = errors.New("date is incomplete")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptySelection       = errors.New("nothing selected")
	ErrUnknownResource      = errors.New("unknown resource")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrInvalidIndex         = errors.New("invalid event index")
)

// ValidationError describes rejected user input. It unwraps to one of the
// sentinel errors above.
type ValidationError struct {
	Field  string
	Code   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, code string, err error, reason string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Reason: reason, Err: err}
}
