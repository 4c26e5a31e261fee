package kinetics

import (
	"fmt"
	"math"
	"strings"
)

// Term pairs a compound with its stoichiometric coefficient.
type Term struct {
	Compound    *Compound
	Coefficient int
}

// Reaction is an irreversible reaction with a power-law rate.
type Reaction struct {
	reactants    []Term
	products     []Term
	rateConstant float64
	order        int
}

type ReactionOption func(*Reaction)

// WithOrder records the overall reaction order. The rate law does not use it.
func WithOrder(order int) ReactionOption {
	return func(r *Reaction) { r.order = order }
}

func NewReaction(reactants, products []Term, rateConstant float64, opts ...ReactionOption) (*Reaction, error) {
	if rateConstant < 0 || math.IsNaN(rateConstant) || math.IsInf(rateConstant, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRateConstant, rateConstant)
	}
	if len(reactants) == 0 && len(products) == 0 {
		return nil, ErrEmptyReaction
	}

	rs, err := mergeTerms(reactants)
	if err != nil {
		return nil, fmt.Errorf("reactants: %w", err)
	}
	ps, err := mergeTerms(products)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}

	r := &Reaction{
		reactants:    rs,
		products:     ps,
		rateConstant: rateConstant,
		order:        1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func mergeTerms(terms []Term) ([]Term, error) {
	out := make([]Term, 0, len(terms))
	index := make(map[string]int, len(terms))
	for _, t := range terms {
		if t.Compound == nil {
			return nil, fmt.Errorf("%w: nil compound", ErrEmptyFormula)
		}
		if t.Coefficient < 1 {
			return nil, fmt.Errorf("%w: %s has %d", ErrInvalidCoefficient, t.Compound.Formula(), t.Coefficient)
		}
		if i, ok := index[t.Compound.Formula()]; ok {
			out[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Compound.Formula()] = len(out)
		out = append(out, t)
	}
	return out, nil
}

func (r *Reaction) Reactants() []Term     { return append([]Term(nil), r.reactants...) }
func (r *Reaction) Products() []Term      { return append([]Term(nil), r.products...) }
func (r *Reaction) RateConstant() float64 { return r.rateConstant }
func (r *Reaction) Order() int            { return r.order }

// WithRateConstant returns a copy of r with a different rate constant.
// Compounds are shared with r.
func (r *Reaction) WithRateConstant(k float64) (*Reaction, error) {
	return NewReaction(r.reactants, r.products, k, WithOrder(r.order))
}

// Rate evaluates k·Π[X]^ν over the reactants. A reactant missing from conc
// makes the rate exactly zero. Negative concentrations count as zero.
func (r *Reaction) Rate(conc map[string]float64) float64 {
	rate := r.rateConstant
	for _, t := range r.reactants {
		c, ok := conc[t.Compound.Formula()]
		if !ok {
			return 0
		}
		rate *= powInt(math.Max(0, c), t.Coefficient)
	}
	return rate
}

func powInt(x float64, n int) float64 {
	switch n {
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, float64(n))
}

// Stoichiometry returns the net coefficient of every compound the reaction
// touches, negative for consumption. A compound on both sides is netted as
// product minus reactant and kept even when the net is zero.
func (r *Reaction) Stoichiometry() []Term {
	out := make([]Term, 0, len(r.reactants)+len(r.products))
	index := make(map[string]int, cap(out))
	for _, t := range r.reactants {
		index[t.Compound.Formula()] = len(out)
		out = append(out, Term{Compound: t.Compound, Coefficient: -t.Coefficient})
	}
	for _, t := range r.products {
		if i, ok := index[t.Compound.Formula()]; ok {
			out[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Compound.Formula()] = len(out)
		out = append(out, t)
	}
	return out
}

func (r *Reaction) String() string {
	return formatSide(r.reactants) + " → " + formatSide(r.products)
}

func formatSide(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Coefficient > 1 {
			parts[i] = fmt.Sprintf("%d%s", t.Coefficient, t.Compound.Formula())
		} else {
			parts[i] = t.Compound.Formula()
		}
	}
	return strings.Join(parts, " + ")
}
