// Package experiment assembles compounds, reactions and initial
// concentrations into a runnable kinetics system.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/chemsim/internal/config"
	"github.com/san-kum/chemsim/internal/integrators"
	"github.com/san-kum/chemsim/internal/kinetics"
	"github.com/san-kum/chemsim/internal/metrics"
	"github.com/san-kum/chemsim/internal/telemetry"
)

// Side lists the formulas and coefficients of one side of a reaction.
type Side struct {
	Formulas     []string
	Coefficients []int
}

// RunConfig controls a single simulation.
type RunConfig struct {
	Time       float64
	Steps      int
	Integrator string
	StepBudget int
}

type Result struct {
	Trajectory *kinetics.Trajectory
	Integrator string
	Time       float64
	Steps      int
	Elapsed    time.Duration
}

// Experiment is not safe for concurrent mutation. Once built, Run may be
// called from several goroutines.
type Experiment struct {
	registry  *kinetics.Registry
	initial   map[string]float64
	reactions []*kinetics.Reaction
	telemetry *telemetry.Metrics
}

type Option func(*Experiment)

func WithTelemetry(m *telemetry.Metrics) Option {
	return func(e *Experiment) { e.telemetry = m }
}

func New(opts ...Option) *Experiment {
	e := &Experiment{
		registry: kinetics.NewRegistry(),
		initial:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig builds an experiment from a validated config.
func FromConfig(cfg *config.Config, opts ...Option) (*Experiment, error) {
	e := New(opts...)
	for _, cc := range cfg.Compounds {
		var copts []kinetics.CompoundOption
		if cc.MolarMass != nil {
			copts = append(copts, kinetics.WithMolarMass(*cc.MolarMass))
		}
		if _, err := e.AddCompound(cc.Formula, cc.Name, cc.Concentration, copts...); err != nil {
			return nil, err
		}
	}
	for i, rc := range cfg.Reactions {
		_, err := e.AddReaction(
			Side{Formulas: rc.Reactants.Formulas, Coefficients: rc.Reactants.Coefficients},
			Side{Formulas: rc.Products.Formulas, Coefficients: rc.Products.Coefficients},
			rc.RateConstant,
			orderOption(rc.Order)...,
		)
		if err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i, err)
		}
	}
	return e, nil
}

func orderOption(order int) []kinetics.ReactionOption {
	if order <= 0 {
		return nil
	}
	return []kinetics.ReactionOption{kinetics.WithOrder(order)}
}

// AddCompound registers formula and sets its initial concentration. Adding a
// known formula again only updates the concentration: the name and options of
// the first registration are kept, including for species AddReaction added.
func (e *Experiment) AddCompound(formula, name string, concentration float64, opts ...kinetics.CompoundOption) (*kinetics.Compound, error) {
	if concentration < 0 {
		return nil, fmt.Errorf("%w: %s = %v", kinetics.ErrNegativeConcentration, formula, concentration)
	}
	if name != "" {
		opts = append(opts, kinetics.WithName(name))
	}
	c, err := e.registry.Register(formula, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := c.MolarMass(); err != nil {
		return nil, err
	}
	e.initial[formula] = concentration
	return c, nil
}

// AddReaction builds a reaction from formula lists. Unknown formulas are
// added with zero concentration.
func (e *Experiment) AddReaction(reactants, products Side, rateConstant float64, opts ...kinetics.ReactionOption) (*kinetics.Reaction, error) {
	rs, err := e.terms(reactants)
	if err != nil {
		return nil, fmt.Errorf("reactants: %w", err)
	}
	ps, err := e.terms(products)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	r, err := kinetics.NewReaction(rs, ps, rateConstant, opts...)
	if err != nil {
		return nil, err
	}
	e.reactions = append(e.reactions, r)
	return r, nil
}

func (e *Experiment) terms(s Side) ([]kinetics.Term, error) {
	if len(s.Formulas) != len(s.Coefficients) {
		return nil, fmt.Errorf("%d formulas but %d coefficients", len(s.Formulas), len(s.Coefficients))
	}
	terms := make([]kinetics.Term, len(s.Formulas))
	for i, f := range s.Formulas {
		c, ok := e.registry.Get(f)
		if !ok {
			var err error
			if c, err = e.AddCompound(f, "", 0); err != nil {
				return nil, err
			}
		}
		terms[i] = kinetics.Term{Compound: c, Coefficient: s.Coefficients[i]}
	}
	return terms, nil
}

func (e *Experiment) Compounds() []*kinetics.Compound {
	return e.registry.Compounds()
}

func (e *Experiment) Reactions() []*kinetics.Reaction {
	return append([]*kinetics.Reaction(nil), e.reactions...)
}

// InitialConcentrations returns a copy of the initial concentrations keyed
// by formula.
func (e *Experiment) InitialConcentrations() map[string]float64 {
	out := make(map[string]float64, len(e.initial))
	for f, c := range e.initial {
		out[f] = c
	}
	return out
}

func (e *Experiment) System() *kinetics.System {
	return kinetics.NewSystem(e.reactions...)
}

// Simulate runs forward Euler over steps points spanning [0, timeEnd].
func (e *Experiment) Simulate(ctx context.Context, timeEnd float64, steps int) (*kinetics.Trajectory, error) {
	res, err := e.Run(ctx, RunConfig{Time: timeEnd, Steps: steps})
	if err != nil {
		return nil, err
	}
	return res.Trajectory, nil
}

// Run simulates the experiment with the integrator and metrics rc selects.
func (e *Experiment) Run(ctx context.Context, rc RunConfig, obs ...kinetics.Observer) (*Result, error) {
	if len(e.reactions) == 0 {
		return nil, fmt.Errorf("no reactions defined: %w", kinetics.ErrEmptySystem)
	}
	if rc.Integrator == "" {
		rc.Integrator = integrators.Default
	}
	stepper, err := integrators.New(rc.Integrator)
	if err != nil {
		return nil, err
	}

	sys := e.System()
	ms, err := metrics.Default(sys)
	if err != nil {
		return nil, err
	}

	logger := telemetry.FromContext(ctx)
	logger.Debug("simulation starting",
		"species", sys.Dim(),
		"reactions", len(e.reactions),
		"integrator", rc.Integrator,
		"time", rc.Time,
		"steps", rc.Steps,
	)

	opts := []kinetics.RunOption{
		kinetics.WithStepper(stepper),
		kinetics.WithMetrics(ms...),
		kinetics.WithObserver(obs...),
	}
	if rc.StepBudget > 0 {
		opts = append(opts, kinetics.WithStepBudget(rc.StepBudget))
	}

	start := time.Now()
	traj, err := sys.SimulateContext(ctx, e.InitialConcentrations(), kinetics.Linspace(0, rc.Time, rc.Steps), opts...)
	elapsed := time.Since(start)

	steps := 0
	if traj != nil {
		steps = traj.Steps
	}
	e.telemetry.ObserveRun(rc.Integrator, steps, elapsed, err)
	if err != nil {
		logger.Warn("simulation failed", "integrator", rc.Integrator, "error", err)
		return nil, err
	}

	logger.Info("simulation finished",
		"integrator", rc.Integrator,
		"steps", traj.Steps,
		"elapsed", elapsed,
		"mass_drift", traj.Metrics["mass_drift"],
	)
	return &Result{
		Trajectory: traj,
		Integrator: rc.Integrator,
		Time:       rc.Time,
		Steps:      rc.Steps,
		Elapsed:    elapsed,
	}, nil
}
