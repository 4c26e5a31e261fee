package kinetics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"
	"unicode"
)

// DefaultAtomicMass is the mass in g/mol assumed for element symbols that
// are alphabetic but absent from the mass table, and for generic species.
const DefaultAtomicMass = 100.0

var elementToken = regexp.MustCompile(`([A-Z][a-z]?)(\d*)`)

// Element is one symbol of a composition with its atom count.
type Element struct {
	Symbol string
	Count  int
}

// Composition lists the elements of a formula in first-seen order.
type Composition []Element

// Count returns the number of atoms of symbol, or zero.
func (c Composition) Count(symbol string) int {
	for _, e := range c {
		if e.Symbol == symbol {
			return e.Count
		}
	}
	return 0
}

func (c Composition) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, e := range c {
		m[e.Symbol] += e.Count
	}
	return m
}

func (c Composition) add(symbol string, count int) Composition {
	for i := range c {
		if c[i].Symbol == symbol {
			c[i].Count += count
			return c
		}
	}
	return append(c, Element{Symbol: symbol, Count: count})
}

// ParseFormula tokenizes a formula into element counts. Text that does not
// match the element grammar is skipped, so malformed input yields a partial
// or empty composition rather than an error. Repeated symbols are summed.
func ParseFormula(formula string) Composition {
	comp := Composition{}
	for _, m := range elementToken.FindAllStringSubmatch(formula, -1) {
		comp = comp.add(m[1], tokenCount(m[2]))
	}
	return comp
}

// ParseFormulaStrict is ParseFormula that rejects any text outside the
// element grammar with a *ParseError.
func ParseFormulaStrict(formula string) (Composition, error) {
	if formula == "" {
		return nil, &ParseError{Formula: formula, Offset: 0}
	}
	comp := Composition{}
	next := 0
	for _, loc := range elementToken.FindAllStringSubmatchIndex(formula, -1) {
		if loc[0] != next {
			return nil, &ParseError{Formula: formula, Offset: next}
		}
		comp = comp.add(formula[loc[2]:loc[3]], tokenCount(formula[loc[4]:loc[5]]))
		next = loc[1]
	}
	if next != len(formula) {
		return nil, &ParseError{Formula: formula, Offset: next}
	}
	return comp, nil
}

func tokenCount(digits string) int {
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// overflow only; the grammar guarantees digits
		return math.MaxInt32
	}
	return n
}

// MassTable maps element symbols to atomic masses in g/mol.
type MassTable struct {
	Masses  map[string]float64
	Default float64
}

var defaultMasses = map[string]float64{
	"H": 1.008, "He": 4.003, "Li": 6.94, "Be": 9.012, "B": 10.81,
	"C": 12.01, "N": 14.01, "O": 16.00, "F": 19.00, "Ne": 20.18,
	"Na": 22.99, "Mg": 24.31, "Al": 26.98, "Si": 28.09, "P": 30.97,
	"S": 32.06, "Cl": 35.45, "Ar": 39.95, "K": 39.10, "Ca": 40.08,
	"I": 126.90,
}

// DefaultMassTable returns the built-in table of common elements.
func DefaultMassTable() MassTable {
	masses := make(map[string]float64, len(defaultMasses))
	for k, v := range defaultMasses {
		masses[k] = v
	}
	return MassTable{Masses: masses, Default: DefaultAtomicMass}
}

// IsGeneric reports whether comp is a placeholder species such as "A": a
// single one-letter symbol that is not a known element.
func (t MassTable) IsGeneric(comp Composition) bool {
	if len(comp) != 1 {
		return false
	}
	sym := comp[0].Symbol
	if len([]rune(sym)) != 1 || !isAlpha(sym) {
		return false
	}
	_, known := t.Masses[sym]
	return !known
}

// MolarMass sums atomic masses over comp. Generic species weigh exactly
// t.Default; other unlisted alphabetic symbols weigh t.Default per atom.
func (t MassTable) MolarMass(comp Composition) (float64, error) {
	if t.IsGeneric(comp) {
		return t.Default, nil
	}
	total := 0.0
	for _, e := range comp {
		if m, ok := t.Masses[e.Symbol]; ok {
			total += m * float64(e.Count)
			continue
		}
		if !isAlpha(e.Symbol) {
			return 0, &UnknownElementError{Symbol: e.Symbol}
		}
		total += t.Default * float64(e.Count)
	}
	return total, nil
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Compound is a chemical species. Two compounds with the same formula are
// the same species; all per-species maps in this package key by formula.
type Compound struct {
	formula     string
	name        string
	composition Composition

	massOnce sync.Once
	mass     float64
	massErr  error
	supplied bool
}

type CompoundOption func(*Compound) error

func WithName(name string) CompoundOption {
	return func(c *Compound) error {
		if name != "" {
			c.name = name
		}
		return nil
	}
}

// WithMolarMass supplies the molar mass instead of computing it.
func WithMolarMass(mass float64) CompoundOption {
	return func(c *Compound) error {
		if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidMolarMass, mass)
		}
		c.mass = mass
		c.supplied = true
		return nil
	}
}

func NewCompound(formula string, opts ...CompoundOption) (*Compound, error) {
	if formula == "" {
		return nil, ErrEmptyFormula
	}
	c := &Compound{
		formula:     formula,
		name:        formula,
		composition: ParseFormula(formula),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Compound) Formula() string { return c.formula }
func (c *Compound) Name() string    { return c.name }

// Composition returns a copy of the parsed element counts.
func (c *Compound) Composition() Composition {
	out := make(Composition, len(c.composition))
	copy(out, c.composition)
	return out
}

// Generic reports whether the compound is a placeholder species.
func (c *Compound) Generic() bool {
	return DefaultMassTable().IsGeneric(c.composition)
}

// MolarMass returns the molar mass in g/mol, computing it with the default
// table on first use and returning the cached value afterwards.
func (c *Compound) MolarMass() (float64, error) {
	c.massOnce.Do(func() {
		if c.supplied {
			return
		}
		c.mass, c.massErr = DefaultMassTable().MolarMass(c.composition)
	})
	return c.mass, c.massErr
}

func (c *Compound) String() string {
	return fmt.Sprintf("%s (%s)", c.name, c.formula)
}
