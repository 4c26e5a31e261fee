// Package sweep runs one system repeatedly over a range of rate constants.
package sweep

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chemsim/internal/experiment"
	"github.com/san-kum/chemsim/internal/integrators"
	"github.com/san-kum/chemsim/internal/kinetics"
	"github.com/san-kum/chemsim/internal/metrics"
	"github.com/san-kum/chemsim/internal/telemetry"
)

const DefaultWorkers = 4

type Config struct {
	Reaction   int
	From       float64
	To         float64
	Count      int
	Workers    int
	Time       float64
	Steps      int
	Integrator string
	Telemetry  *telemetry.Metrics
}

type Point struct {
	RateConstant float64            `json:"rate_constant"`
	Final        map[string]float64 `json:"final"`
	Metrics      map[string]float64 `json:"metrics"`
	Elapsed      time.Duration      `json:"elapsed"`
}

type Result struct {
	Reaction string  `json:"reaction"`
	Points   []Point `json:"points"`
}

// Values returns count evenly spaced values over [from, to].
func Values(from, to float64, count int) []float64 {
	if count == 1 {
		return []float64{from}
	}
	return kinetics.Linspace(from, to, count)
}

func (c Config) validate(reactions int) error {
	if c.Reaction < 0 || c.Reaction >= reactions {
		return fmt.Errorf("reaction index %d out of range [0, %d)", c.Reaction, reactions)
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	for _, v := range []float64{c.From, c.To} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", kinetics.ErrInvalidRateConstant, v)
		}
	}
	return nil
}

// Run simulates e once per rate constant. Runs share the compound graph and
// execute concurrently; points come back in the order of Values.
func Run(ctx context.Context, e *experiment.Experiment, cfg Config) (*Result, error) {
	reactions := e.Reactions()
	if len(reactions) == 0 {
		return nil, fmt.Errorf("no reactions defined: %w", kinetics.ErrEmptySystem)
	}
	if err := cfg.validate(len(reactions)); err != nil {
		return nil, err
	}
	if _, err := integrators.New(cfg.Integrator); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	values := Values(cfg.From, cfg.To, cfg.Count)
	initial := e.InitialConcentrations()
	times := kinetics.Linspace(0, cfg.Time, cfg.Steps)
	points := make([]Point, len(values))
	logger := telemetry.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range values {
		g.Go(func() error {
			pt, err := runPoint(gctx, reactions, cfg, k, initial, times)
			if err != nil {
				return fmt.Errorf("k = %g: %w", k, err)
			}
			logger.Debug("sweep point finished", "k", k, "elapsed", pt.Elapsed)
			points[i] = *pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Reaction: reactions[cfg.Reaction].String(),
		Points:   points,
	}, nil
}

func runPoint(ctx context.Context, base []*kinetics.Reaction, cfg Config, k float64, initial map[string]float64, times []float64) (*Point, error) {
	reactions := append([]*kinetics.Reaction(nil), base...)
	r, err := reactions[cfg.Reaction].WithRateConstant(k)
	if err != nil {
		return nil, err
	}
	reactions[cfg.Reaction] = r

	sys := kinetics.NewSystem(reactions...)
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ms, err := metrics.Default(sys)
	if err != nil {
		return nil, err
	}

	name := cfg.Integrator
	if name == "" {
		name = integrators.Default
	}
	start := time.Now()
	traj, err := sys.SimulateContext(ctx, initial, times, kinetics.WithStepper(stepper), kinetics.WithMetrics(ms...))
	elapsed := time.Since(start)
	steps := 0
	if traj != nil {
		steps = traj.Steps
	}
	cfg.Telemetry.ObserveRun(name, steps, elapsed, err)
	if err != nil {
		return nil, err
	}

	return &Point{
		RateConstant: k,
		Final:        traj.Final(),
		Metrics:      traj.Metrics,
		Elapsed:      elapsed,
	}, nil
}

// Best returns the point with the highest final concentration of formula.
func (r *Result) Best(formula string) (Point, bool) {
	best := -1
	for i, p := range r.Points {
		v, ok := p.Final[formula]
		if !ok {
			continue
		}
		if best < 0 || v > r.Points[best].Final[formula] {
			best = i
		}
	}
	if best < 0 {
		return Point{}, false
	}
	return r.Points[best], true
}
