package kinetics

import (
	"errors"
	"math"
	"testing"
)

func mustCompound(t testing.TB, reg *Registry, formula string) *Compound {
	t.Helper()
	c, err := reg.Register(formula)
	if err != nil {
		t.Fatalf("register %s: %v", formula, err)
	}
	return c
}

func mustReaction(t testing.TB, reactants, products []Term, k float64) *Reaction {
	t.Helper()
	r, err := NewReaction(reactants, products, k)
	if err != nil {
		t.Fatalf("NewReaction: %v", err)
	}
	return r
}

func TestReactionRate(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")
	c := mustCompound(t, reg, "C")

	r := mustReaction(t,
		[]Term{{a, 2}, {b, 1}},
		[]Term{{c, 1}},
		0.5,
	)

	tests := []struct {
		name     string
		conc     map[string]float64
		expected float64
	}{
		{"power law", map[string]float64{"A": 2, "B": 3}, 0.5 * 4 * 3},
		{"zero reactant", map[string]float64{"A": 0, "B": 3}, 0},
		{"missing reactant", map[string]float64{"A": 2}, 0},
		{"negative clamped", map[string]float64{"A": -1, "B": 3}, 0},
		{"product ignored", map[string]float64{"A": 1, "B": 1, "C": 100}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Rate(tt.conc); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Rate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReactionRate_AbsentReactantRecovers(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")
	r := mustReaction(t, []Term{{a, 1}}, []Term{{b, 1}}, 2)

	if got := r.Rate(map[string]float64{"B": 1}); got != 0 {
		t.Errorf("rate with absent reactant = %v, want exactly 0", got)
	}
	if got := r.Rate(map[string]float64{"A": 0.25, "B": 1}); got != 0.5 {
		t.Errorf("rate after reactant appears = %v, want 0.5", got)
	}
}

func TestReactionStoichiometry(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")
	c := mustCompound(t, reg, "C")

	r := mustReaction(t, []Term{{a, 1}, {b, 2}}, []Term{{c, 3}}, 1)

	got := r.Stoichiometry()
	want := []struct {
		formula string
		coeff   int
	}{{"A", -1}, {"B", -2}, {"C", 3}}

	if len(got) != len(want) {
		t.Fatalf("got %d terms, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Compound.Formula() != w.formula || got[i].Coefficient != w.coeff {
			t.Errorf("term %d = %s:%d, want %s:%d", i, got[i].Compound.Formula(), got[i].Coefficient, w.formula, w.coeff)
		}
	}
}

// A compound on both sides is netted, not overwritten by the product entry.
func TestReactionStoichiometry_NetsBothSides(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")

	autocatalytic := mustReaction(t, []Term{{a, 1}, {b, 1}}, []Term{{a, 2}}, 1)
	net := map[string]int{}
	for _, term := range autocatalytic.Stoichiometry() {
		net[term.Compound.Formula()] = term.Coefficient
	}
	if net["A"] != 1 {
		t.Errorf("A net = %d, want 1 (2 - 1)", net["A"])
	}
	if net["B"] != -1 {
		t.Errorf("B net = %d, want -1", net["B"])
	}

	catalyst := mustReaction(t, []Term{{a, 1}}, []Term{{a, 1}}, 1)
	terms := catalyst.Stoichiometry()
	if len(terms) != 1 || terms[0].Coefficient != 0 {
		t.Errorf("catalyst-only reaction should keep A with net 0, got %+v", terms)
	}
}

func TestNewReaction_Validation(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")

	tests := []struct {
		name      string
		reactants []Term
		products  []Term
		k         float64
		err       error
	}{
		{"negative k", []Term{{a, 1}}, []Term{{b, 1}}, -1, ErrInvalidRateConstant},
		{"NaN k", []Term{{a, 1}}, []Term{{b, 1}}, math.NaN(), ErrInvalidRateConstant},
		{"zero coefficient", []Term{{a, 0}}, []Term{{b, 1}}, 1, ErrInvalidCoefficient},
		{"negative coefficient", []Term{{a, 1}}, []Term{{b, -2}}, 1, ErrInvalidCoefficient},
		{"nil compound", []Term{{nil, 1}}, []Term{{b, 1}}, 1, ErrEmptyFormula},
		{"empty", nil, nil, 1, ErrEmptyReaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReaction(tt.reactants, tt.products, tt.k)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestNewReaction_MergesDuplicateTerms(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")

	// a second instance with the same formula is the same species
	a2, _ := NewCompound("A")

	r := mustReaction(t, []Term{{a, 1}, {a2, 1}}, []Term{{b, 1}}, 1)
	rs := r.Reactants()
	if len(rs) != 1 || rs[0].Coefficient != 2 {
		t.Fatalf("expected merged A with coefficient 2, got %+v", rs)
	}
	if got := r.Rate(map[string]float64{"A": 3}); got != 9 {
		t.Errorf("rate = %v, want 9", got)
	}
}

func TestReactionString(t *testing.T) {
	reg := NewRegistry()
	h2 := mustCompound(t, reg, "H2")
	o2 := mustCompound(t, reg, "O2")
	h2o := mustCompound(t, reg, "H2O")

	r := mustReaction(t, []Term{{h2, 2}, {o2, 1}}, []Term{{h2o, 2}}, 1)
	if got := r.String(); got != "2H2 + O2 → 2H2O" {
		t.Errorf("String() = %q", got)
	}
}

func TestReaction_OrderAndCopy(t *testing.T) {
	reg := NewRegistry()
	a := mustCompound(t, reg, "A")
	b := mustCompound(t, reg, "B")

	r, err := NewReaction([]Term{{a, 1}}, []Term{{b, 1}}, 1, WithOrder(2))
	if err != nil {
		t.Fatal(err)
	}
	if r.Order() != 2 {
		t.Errorf("Order() = %d, want 2", r.Order())
	}

	r2, err := r.WithRateConstant(5)
	if err != nil {
		t.Fatal(err)
	}
	if r2.RateConstant() != 5 || r.RateConstant() != 1 {
		t.Error("WithRateConstant must not modify the original")
	}
	if r2.Order() != 2 {
		t.Error("WithRateConstant dropped the order")
	}
}
