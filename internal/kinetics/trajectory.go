package kinetics

// Trajectory holds the concentration of every species at every time point.
type Trajectory struct {
	Times   []float64
	Species []*Compound
	Series  map[string][]float64
	Metrics map[string]float64
	Steps   int
}

func newTrajectory(species []*Compound, times []float64) *Trajectory {
	t := &Trajectory{
		Times:   append([]float64(nil), times...),
		Species: append([]*Compound(nil), species...),
		Series:  make(map[string][]float64, len(species)),
		Metrics: make(map[string]float64),
	}
	for _, c := range species {
		t.Series[c.Formula()] = make([]float64, len(times))
	}
	return t
}

func (t *Trajectory) record(i int, x State) {
	for j, c := range t.Species {
		t.Series[c.Formula()][i] = x[j]
	}
}

// Of returns the concentration series of formula, or nil.
func (t *Trajectory) Of(formula string) []float64 {
	return t.Series[formula]
}

// Final returns the last concentration of every species.
func (t *Trajectory) Final() map[string]float64 {
	out := make(map[string]float64, len(t.Series))
	for f, s := range t.Series {
		if len(s) > 0 {
			out[f] = s[len(s)-1]
		}
	}
	return out
}

// Row returns the state at time index i in species order.
func (t *Trajectory) Row(i int) State {
	x := make(State, len(t.Species))
	for j, c := range t.Species {
		x[j] = t.Series[c.Formula()][i]
	}
	return x
}

func (t *Trajectory) Len() int { return len(t.Times) }
