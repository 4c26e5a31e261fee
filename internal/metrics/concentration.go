package metrics

import (
	"math"

	"github.com/san-kum/chemsim/internal/kinetics"
)

// MinConcentration records the smallest concentration of any species seen
// during a run.
type MinConcentration struct {
	name    string
	min     float64
	samples int
}

func NewMinConcentration() *MinConcentration {
	return &MinConcentration{
		name: "min_concentration",
		min:  math.Inf(1),
	}
}

func (m *MinConcentration) Name() string { return m.name }

func (m *MinConcentration) Observe(x kinetics.State, t float64) {
	m.samples++
	for _, v := range x {
		if v < m.min {
			m.min = v
		}
	}
}

func (m *MinConcentration) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinConcentration) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}

// Default returns the metrics recorded for every run of sys.
func Default(sys *kinetics.System) ([]kinetics.Metric, error) {
	drift, err := NewMassDrift(sys.Species())
	if err != nil {
		return nil, err
	}
	return []kinetics.Metric{drift, NewMinConcentration()}, nil
}
