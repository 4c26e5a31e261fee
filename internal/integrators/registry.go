// Package integrators provides fixed-step integrators for kinetics systems.
//
// Steppers carry scratch buffers and are not safe for concurrent use; build
// one per run with New.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/chemsim/internal/kinetics"
)

const Default = "euler"

var builders = map[string]func() kinetics.Stepper{
	"euler": func() kinetics.Stepper { return kinetics.NewEuler() },
	"heun":  func() kinetics.Stepper { return NewHeun() },
	"rk4":   func() kinetics.Stepper { return NewRK4() },
}

// New returns a fresh stepper by name. An empty name selects Default.
func New(name string) (kinetics.Stepper, error) {
	if name == "" {
		name = Default
	}
	fn, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
