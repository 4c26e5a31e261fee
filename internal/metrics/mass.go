// Package metrics provides per-run observers for kinetics simulations.
package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/chemsim/internal/kinetics"
)

// MassDrift tracks the largest relative change of total mass Σ c·M over a
// run. Reactions that do not balance mass show a drift by construction.
type MassDrift struct {
	name        string
	masses      []float64
	initialMass float64
	maxDrift    float64
	samples     int
}

// NewMassDrift takes the molar masses of species in state order.
func NewMassDrift(species []*kinetics.Compound) (*MassDrift, error) {
	masses := make([]float64, len(species))
	for i, c := range species {
		m, err := c.MolarMass()
		if err != nil {
			return nil, fmt.Errorf("mass of %s: %w", c.Formula(), err)
		}
		masses[i] = m
	}
	return &MassDrift{
		name:   "mass_drift",
		masses: masses,
	}, nil
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(x kinetics.State, t float64) {
	total := TotalMass(x, m.masses)
	if m.samples == 0 {
		m.initialMass = total
	}
	m.samples++

	if m.initialMass != 0 {
		drift := math.Abs(total-m.initialMass) / math.Abs(m.initialMass)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 {
	return m.maxDrift
}

func (m *MassDrift) Reset() {
	m.initialMass = 0
	m.maxDrift = 0
	m.samples = 0
}

// TotalMass returns Σ x[i]·masses[i].
func TotalMass(x kinetics.State, masses []float64) float64 {
	var total float64
	for i := range x {
		if i < len(masses) {
			total += x[i] * masses[i]
		}
	}
	return total
}
