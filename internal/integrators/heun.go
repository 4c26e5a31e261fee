package integrators

import "github.com/san-kum/chemsim/internal/kinetics"

// Heun is the explicit trapezoidal method: an Euler predictor followed by
// an averaged corrector slope.
type Heun struct {
	scratch kinetics.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Step(dyn kinetics.Dynamics, x kinetics.State, t, dt float64) kinetics.State {
	n := len(x)
	if len(h.scratch) != n {
		h.scratch = make(kinetics.State, n)
	}

	k1 := dyn.Derive(x, t)
	for i := 0; i < n; i++ {
		h.scratch[i] = x[i] + dt*k1[i]
	}
	k2 := dyn.Derive(h.scratch, t+dt)

	result := make(kinetics.State, n)
	half := dt * 0.5
	for i := 0; i < n; i++ {
		result[i] = x[i] + half*(k1[i]+k2[i])
	}
	return result
}
