// Package kinetics provides the reaction-kinetics simulation core.
//
// The package models a closed set of chemical reactions and integrates
// their concentrations forward in time:
//
//   - [Compound]: a chemical species identified by its formula
//   - [Registry]: insertion-ordered, idempotent compound factory
//   - [Reaction]: power-law rate and stoichiometry over compounds
//   - [System]: aggregates reactions and runs the integrator
//   - [Stepper]: fixed-step integrator interface, [Euler] by default
//
// # Example
//
//	reg := kinetics.NewRegistry()
//	a, _ := reg.Register("A")
//	b, _ := reg.Register("B")
//	c, _ := reg.Register("C")
//	r, _ := kinetics.NewReaction(
//		[]kinetics.Term{{Compound: a, Coefficient: 1}, {Compound: b, Coefficient: 1}},
//		[]kinetics.Term{{Compound: c, Coefficient: 1}},
//		0.1,
//	)
//	traj, _ := kinetics.NewSystem(r).Simulate(
//		map[string]float64{"A": 1.0, "B": 0.5},
//		kinetics.Linspace(0, 100, 1000),
//	)
//
// # Thread Safety
//
// Compounds and reactions are immutable after construction and may be
// shared read-only across goroutines. Each Simulate call owns its own
// working state, so independent runs can execute concurrently. A single
// run is sequential.
package kinetics
