package booking

import (
	"errors"
	"fmt"
)

var (
	ErrOwnerNotFound         = errors.New("owner not found")
	ErrInvalidTimeslot       = errors.New("requested window does not lie on a valid occurrence")
	ErrTimeslotBooked        = errors.New("timeslot already booked")
	ErrDuplicateRule         = errors.New("owner already has a recurrence rule")
	ErrRuleDefinitionInvalid = errors.New("invalid recurrence rule")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

// RuleDefinitionError reports why a rule definition was rejected. It matches
// ErrRuleDefinitionInvalid under errors.Is.
type RuleDefinitionError struct {
	msg string
}

func (e *RuleDefinitionError) Error() string {
	return e.msg
}

func (e *RuleDefinitionError) Is(target error) bool {
	return target == ErrRuleDefinitionInvalid
}

// ValidationError is returned for malformed requests that are not rule
// definitions, such as an empty owner or an inverted query window.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
