package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/chemsim/internal/kinetics"
)

// first-order decay dA/dt = -kA with a known closed form
type decay struct{ k float64 }

func (d *decay) Dim() int { return 1 }
func (d *decay) Derive(x kinetics.State, t float64) kinetics.State {
	return kinetics.State{-d.k * x[0]}
}

func integrate(st kinetics.Stepper, dyn kinetics.Dynamics, x kinetics.State, dt float64, steps int) kinetics.State {
	for i := 0; i < steps; i++ {
		x = st.Step(dyn, x, float64(i)*dt, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &decay{k: 0.5}
	x := integrate(NewRK4(), dyn, kinetics.State{1.0}, 0.01, 200)

	expected := math.Exp(-0.5 * 2.0)
	if math.Abs(x[0]-expected) > 1e-9 {
		t.Errorf("RK4 error too large: got %.12f, expected %.12f", x[0], expected)
	}
}

func TestIntegratorOrdering(t *testing.T) {
	dyn := &decay{k: 1}
	expected := math.Exp(-1)

	errOf := func(st kinetics.Stepper) float64 {
		x := integrate(st, dyn, kinetics.State{1.0}, 0.1, 10)
		return math.Abs(x[0] - expected)
	}

	euler := errOf(kinetics.NewEuler())
	heun := errOf(NewHeun())
	rk4 := errOf(NewRK4())

	if !(rk4 < heun && heun < euler) {
		t.Errorf("expected rk4 < heun < euler, got %e, %e, %e", rk4, heun, euler)
	}
}

func TestRK4_OnReactionSystem(t *testing.T) {
	reg := kinetics.NewRegistry()
	a, _ := reg.Register("A")
	b, _ := reg.Register("B")
	r, err := kinetics.NewReaction(
		[]kinetics.Term{{Compound: a, Coefficient: 1}},
		[]kinetics.Term{{Compound: b, Coefficient: 1}},
		0.3,
	)
	if err != nil {
		t.Fatal(err)
	}
	sys := kinetics.NewSystem(r)

	st, err := New("rk4")
	if err != nil {
		t.Fatal(err)
	}
	traj, err := sys.SimulateContext(t.Context(), map[string]float64{"A": 2}, kinetics.Linspace(0, 5, 101), kinetics.WithStepper(st))
	if err != nil {
		t.Fatal(err)
	}

	want := 2 * math.Exp(-0.3*5)
	if got := traj.Final()["A"]; math.Abs(got-want) > 1e-7 {
		t.Errorf("final A = %v, want %v", got, want)
	}
	if sum := traj.Final()["A"] + traj.Final()["B"]; math.Abs(sum-2) > 1e-12 {
		t.Errorf("A + B = %v, want 2", sum)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}

	st, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*kinetics.Euler); !ok {
		t.Errorf("default stepper is %T, want *kinetics.Euler", st)
	}

	if _, err := New("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
