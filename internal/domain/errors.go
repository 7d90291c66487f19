package domain

import (
	"errors"
	"fmt"
)

// Failure kinds returned by inventory operations. Callers match them with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateName    = errors.New("name already exists")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyStocked   = errors.New("already stocked")
	ErrProductInUse     = errors.New("product is still stocked by a vending machine")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	ErrDuplicateProductName = fmt.Errorf("product %w", ErrDuplicateName)
	ErrDuplicateMachineName = fmt.Errorf("vending machine %w", ErrDuplicateName)

	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrMachineNotFound = fmt.Errorf("vending machine %w", ErrNotFound)
	ErrNotStocked      = fmt.Errorf("stock line %w", ErrNotFound)
)

// InvalidInputError describes the field rule a value broke
type InvalidInputError struct {
	Field string
	Rule  string
	Param string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Message())
}

// Message is the human readable form of the broken rule
func (e *InvalidInputError) Message() string {
	switch e.Rule {
	case "required":
		return "must not be empty"
	case "max":
		return "must be at most " + e.Param + " characters"
	case "gte":
		return "must be greater than or equal to " + e.Param
	case "lte":
		return "must be less than or equal to " + e.Param
	default:
		return "is invalid"
	}
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
