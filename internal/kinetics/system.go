package kinetics

import (
	"context"
	"fmt"
	"math"
)

// System is an ordered, immutable collection of reactions over a fixed set
// of species.
type System struct {
	reactions []*Reaction
	species   []*Compound
	index     map[string]int
	compiled  []compiledReaction
}

type compiledReaction struct {
	k         float64
	reactants []indexedTerm
	net       []indexedTerm
}

type indexedTerm struct {
	idx   int
	coeff int
}

// NewSystem derives the species of reactions in first-seen order, reactants
// before products within each reaction.
func NewSystem(reactions ...*Reaction) *System {
	s := &System{
		reactions: append([]*Reaction(nil), reactions...),
		index:     make(map[string]int),
	}
	for _, r := range s.reactions {
		for _, t := range r.reactants {
			s.addSpecies(t.Compound)
		}
		for _, t := range r.products {
			s.addSpecies(t.Compound)
		}
	}
	s.compiled = make([]compiledReaction, len(s.reactions))
	for i, r := range s.reactions {
		cr := compiledReaction{k: r.rateConstant}
		for _, t := range r.reactants {
			cr.reactants = append(cr.reactants, indexedTerm{idx: s.index[t.Compound.Formula()], coeff: t.Coefficient})
		}
		for _, t := range r.Stoichiometry() {
			cr.net = append(cr.net, indexedTerm{idx: s.index[t.Compound.Formula()], coeff: t.Coefficient})
		}
		s.compiled[i] = cr
	}
	return s
}

func (s *System) addSpecies(c *Compound) {
	if _, ok := s.index[c.Formula()]; ok {
		return
	}
	s.index[c.Formula()] = len(s.species)
	s.species = append(s.species, c)
}

func (s *System) Reactions() []*Reaction { return append([]*Reaction(nil), s.reactions...) }
func (s *System) Species() []*Compound   { return append([]*Compound(nil), s.species...) }
func (s *System) Dim() int               { return len(s.species) }

// IndexOf returns the position of formula in the species order.
func (s *System) IndexOf(formula string) (int, bool) {
	i, ok := s.index[formula]
	return i, ok
}

// Derive returns the net rate of change of every species at x. Negative
// entries of x are treated as zero by the rate law.
func (s *System) Derive(x State, t float64) State {
	dx := make(State, len(s.species))
	for _, r := range s.compiled {
		rate := r.k
		for _, term := range r.reactants {
			rate *= powInt(math.Max(0, x[term.idx]), term.coeff)
		}
		for _, term := range r.net {
			dx[term.idx] += float64(term.coeff) * rate
		}
	}
	return dx
}

// StateOf builds a state vector from concentrations keyed by formula.
// Species missing from conc start at zero; unknown formulas are ignored.
func (s *System) StateOf(conc map[string]float64) State {
	x := make(State, len(s.species))
	for i, c := range s.species {
		x[i] = conc[c.Formula()]
	}
	return x
}

// Concentrations maps a state vector back to formulas.
func (s *System) Concentrations(x State) map[string]float64 {
	out := make(map[string]float64, len(s.species))
	for i, c := range s.species {
		out[c.Formula()] = x[i]
	}
	return out
}

type runOptions struct {
	stepper   Stepper
	metrics   []Metric
	observers []Observer
	budget    int
}

type RunOption func(*runOptions)

func WithStepper(st Stepper) RunOption {
	return func(o *runOptions) {
		if st != nil {
			o.stepper = st
		}
	}
}

func WithMetrics(m ...Metric) RunOption {
	return func(o *runOptions) { o.metrics = append(o.metrics, m...) }
}

func WithObserver(obs ...Observer) RunOption {
	return func(o *runOptions) { o.observers = append(o.observers, obs...) }
}

// WithStepBudget aborts a run with ErrStepBudget instead of taking more
// than n steps. Zero means unlimited.
func WithStepBudget(n int) RunOption {
	return func(o *runOptions) { o.budget = n }
}

// Simulate integrates the system with forward Euler over times.
func (s *System) Simulate(initial map[string]float64, times []float64) (*Trajectory, error) {
	return s.SimulateContext(context.Background(), initial, times)
}

// SimulateContext integrates the system over times. Every state after the
// first is clamped to non-negative values. Validation happens before any
// step is taken and a failed run returns no trajectory.
func (s *System) SimulateContext(ctx context.Context, initial map[string]float64, times []float64, opts ...RunOption) (*Trajectory, error) {
	o := runOptions{stepper: NewEuler()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := s.validate(initial, times); err != nil {
		return nil, err
	}
	steps := len(times) - 1
	if o.budget > 0 && steps > o.budget {
		return nil, &StepError{Step: o.budget, Time: times[o.budget], Wrapped: ErrStepBudget}
	}

	for _, m := range o.metrics {
		m.Reset()
	}

	traj := newTrajectory(s.species, times)
	x := s.StateOf(initial)
	traj.record(0, x)
	s.notify(o, 0, x, times[0])

	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Step: i, Time: times[i-1], Wrapped: err}
		}

		dt := times[i] - times[i-1]
		next := o.stepper.Step(s, x, times[i-1], dt)
		next.ClampNonNegative()
		if !next.IsValid() {
			return nil, &StepError{Step: i, Time: times[i], Wrapped: ErrNonFinite}
		}

		x = next
		traj.record(i, x)
		s.notify(o, i, x, times[i])
	}

	traj.Steps = steps
	for _, m := range o.metrics {
		traj.Metrics[m.Name()] = m.Value()
	}
	return traj, nil
}

func (s *System) notify(o runOptions, step int, x State, t float64) {
	for _, m := range o.metrics {
		m.Observe(x, t)
	}
	for _, obs := range o.observers {
		obs.OnStep(step, x, t)
	}
}

func (s *System) validate(initial map[string]float64, times []float64) error {
	if len(s.reactions) == 0 {
		return ErrEmptySystem
	}
	if len(times) < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidTimePoints, len(times))
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: times[%d] = %v", ErrInvalidTimePoints, i, t)
		}
		if i > 0 && t <= times[i-1] {
			return fmt.Errorf("%w: times[%d] = %v after %v", ErrInvalidTimePoints, i, t, times[i-1])
		}
	}
	for f, c := range initial {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: %s = %v", ErrNegativeConcentration, f, c)
		}
	}
	return nil
}
