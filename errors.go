package flatten

import (
	"errors"
	"fmt"
)

// ErrContract is the sentinel wrapped by every ContractError.
var ErrContract = errors.New("flatten: display list contract violation")

// ContractError reports a structurally malformed or internally inconsistent
// display list: mismatched containers, shadows left open, duplicate ids and
// similar faults that abort a flattening pass.
type ContractError struct {
	Op  string
	Msg string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("flatten: %s: %s", e.Op, e.Msg)
}

// Unwrap returns ErrContract so callers can use errors.Is.
func (e *ContractError) Unwrap() error {
	return ErrContract
}

// Faultf panics with a *ContractError. The scene builder recovers these at
// its entry point and returns them as ordinary errors.
func Faultf(op, format string, args ...any) {
	panic(&ContractError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
