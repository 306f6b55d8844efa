package deal

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("deal validation failed")
	// ErrArithmetic matches every *ArithmeticError via errors.Is.
	ErrArithmetic = errors.New("deal arithmetic undefined")
)

// ValidationError reports an input that violates a precondition. It is raised before
// any arithmetic runs.
type ValidationError struct {
	Field      string      `json:"field"`
	Constraint string      `json:"constraint"`
	Value      interface{} `json:"value"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("VALIDATION_ERROR: %s must be %s (got %v)", e.Field, e.Constraint, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ArithmeticError reports an intermediate result that is undefined even though the
// inputs passed validation. Seeing one means a validation rule is missing.
type ArithmeticError struct {
	Op     string `json:"op"`
	Detail string `json:"detail"`
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("ARITHMETIC_ERROR: %s: %s", e.Op, e.Detail)
}

func (e *ArithmeticError) Is(target error) bool {
	return target == ErrArithmetic
}

func invalid(field, constraint string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint, Value: value}
}
