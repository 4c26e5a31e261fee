package kinetics

import (
	"errors"
	"fmt"
)

// Domain errors for kinetics operations.
var (
	// ErrEmptySystem indicates a simulation was requested with no reactions.
	ErrEmptySystem = errors.New("kinetics: no reactions defined")

	// ErrInvalidTimePoints indicates fewer than two time points or a sequence
	// that is not strictly increasing.
	ErrInvalidTimePoints = errors.New("kinetics: time points must be finite, strictly increasing and at least two")

	// ErrNegativeConcentration indicates a negative or non-finite initial concentration.
	ErrNegativeConcentration = errors.New("kinetics: initial concentration must be non-negative")

	// ErrEmptyFormula indicates a compound was constructed without a formula.
	ErrEmptyFormula = errors.New("kinetics: formula is required")

	// ErrInvalidCoefficient indicates a stoichiometric coefficient below one.
	ErrInvalidCoefficient = errors.New("kinetics: coefficient must be a positive integer")

	// ErrInvalidRateConstant indicates a negative or non-finite rate constant.
	ErrInvalidRateConstant = errors.New("kinetics: rate constant must be non-negative and finite")

	// ErrInvalidMolarMass indicates a negative or non-finite supplied molar mass.
	ErrInvalidMolarMass = errors.New("kinetics: molar mass must be non-negative and finite")

	// ErrEmptyReaction indicates a reaction with neither reactants nor products.
	ErrEmptyReaction = errors.New("kinetics: reaction has no reactants and no products")

	// ErrNonFinite indicates a step produced an infinite or NaN concentration.
	ErrNonFinite = errors.New("kinetics: non-finite concentration")

	// ErrStepBudget indicates a run would exceed its configured step budget.
	ErrStepBudget = errors.New("kinetics: step budget exceeded")
)

// ParseError reports a formula that does not match the element grammar.
type ParseError struct {
	Formula string
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("kinetics: malformed formula %q at offset %d", e.Formula, e.Offset)
}

// UnknownElementError reports a composition symbol that cannot be an element.
type UnknownElementError struct {
	Symbol string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("kinetics: unknown element %q", e.Symbol)
}

// StepError wraps an error with the step at which a run stopped.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
