package config

import "sort"

func side(formulas []string, coefficients ...int) SideConfig {
	return SideConfig{Formulas: formulas, Coefficients: coefficients}
}

var Presets = map[string]*Config{
	"ab_to_c": {
		Time: 100, Steps: 1000, Integrator: "euler",
		Compounds: []CompoundConfig{
			{Formula: "A", Name: "Reactant A", Concentration: 1.0},
			{Formula: "B", Name: "Reactant B", Concentration: 0.5},
			{Formula: "C", Name: "Product C", Concentration: 0.0},
		},
		Reactions: []ReactionConfig{
			{Reactants: side([]string{"A", "B"}, 1, 1), Products: side([]string{"C"}, 1), RateConstant: 0.1},
		},
	},
	"decay": {
		Time: 20, Steps: 500, Integrator: "euler",
		Compounds: []CompoundConfig{
			{Formula: "A", Name: "Parent", Concentration: 1.0},
			{Formula: "B", Name: "Daughter", Concentration: 0.0},
		},
		Reactions: []ReactionConfig{
			{Reactants: side([]string{"A"}, 1), Products: side([]string{"B"}, 1), RateConstant: 0.3},
		},
	},
	"consecutive": {
		Time: 30, Steps: 1000, Integrator: "euler",
		Compounds: []CompoundConfig{
			{Formula: "A", Name: "Reactant", Concentration: 1.0},
			{Formula: "B", Name: "Intermediate", Concentration: 0.0},
			{Formula: "C", Name: "Product", Concentration: 0.0},
		},
		Reactions: []ReactionConfig{
			{Reactants: side([]string{"A"}, 1), Products: side([]string{"B"}, 1), RateConstant: 0.5},
			{Reactants: side([]string{"B"}, 1), Products: side([]string{"C"}, 1), RateConstant: 0.2},
		},
	},
	"reversible": {
		Time: 40, Steps: 800, Integrator: "euler",
		Compounds: []CompoundConfig{
			{Formula: "A", Concentration: 1.0},
			{Formula: "B", Concentration: 0.0},
		},
		Reactions: []ReactionConfig{
			{Reactants: side([]string{"A"}, 1), Products: side([]string{"B"}, 1), RateConstant: 0.2},
			{Reactants: side([]string{"B"}, 1), Products: side([]string{"A"}, 1), RateConstant: 0.1},
		},
	},
	"water": {
		Time: 10, Steps: 1000, Integrator: "euler",
		Compounds: []CompoundConfig{
			{Formula: "H2", Name: "Hydrogen", Concentration: 2.0},
			{Formula: "O2", Name: "Oxygen", Concentration: 1.0},
			{Formula: "H2O", Name: "Water", Concentration: 0.0},
		},
		Reactions: []ReactionConfig{
			{Reactants: side([]string{"H2", "O2"}, 2, 1), Products: side([]string{"H2O"}, 2), RateConstant: 0.05, Order: 3},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
