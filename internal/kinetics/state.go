package kinetics

import "math"

// State holds one concentration per species, in System species order.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ClampNonNegative replaces negative entries with zero in place and reports
// how many were replaced.
func (s State) ClampNonNegative() int {
	n := 0
	for i, v := range s {
		if v < 0 {
			s[i] = 0
			n++
		}
	}
	return n
}

// Dynamics is the right-hand side dX/dt = f(X, t) of a concentration ODE.
type Dynamics interface {
	Derive(x State, t float64) State
	Dim() int
}

// Stepper advances a state by one fixed step.
type Stepper interface {
	Step(dyn Dynamics, x State, t, dt float64) State
}

// Metric accumulates a scalar over the recorded points of a run.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Observer is notified of every recorded point of a run.
type Observer interface {
	OnStep(step int, x State, t float64)
}

// Euler is the explicit forward Euler method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn Dynamics, x State, t, dt float64) State {
	dx := dyn.Derive(x, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dx[i]*dt
	}
	return result
}

// Linspace returns n evenly spaced points over [start, end], with the last
// point equal to end.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{start}
	}
	step := (end - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}
