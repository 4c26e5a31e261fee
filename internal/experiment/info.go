package experiment

import (
	"fmt"
	"strings"
)

type CompoundInfo struct {
	Formula       string  `json:"formula"`
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	Concentration float64 `json:"concentration"`
	MolarMass     float64 `json:"molar_mass"`
	Generic       bool    `json:"generic"`
}

type ReactionInfo struct {
	Equation     string  `json:"equation"`
	RateConstant float64 `json:"rate_constant"`
	Order        int     `json:"order"`
}

// Info summarizes the compounds and reactions of an experiment.
type Info struct {
	Compounds []CompoundInfo `json:"compounds"`
	Reactions []ReactionInfo `json:"reactions"`
}

func (e *Experiment) Info() Info {
	var info Info
	for _, c := range e.registry.Compounds() {
		mass, _ := c.MolarMass()
		info.Compounds = append(info.Compounds, CompoundInfo{
			Formula:       c.Formula(),
			Name:          c.Name(),
			Label:         c.String(),
			Concentration: e.initial[c.Formula()],
			MolarMass:     mass,
			Generic:       c.Generic(),
		})
	}
	for _, r := range e.reactions {
		info.Reactions = append(info.Reactions, ReactionInfo{
			Equation:     r.String(),
			RateConstant: r.RateConstant(),
			Order:        r.Order(),
		})
	}
	return info
}

func (i Info) String() string {
	var b strings.Builder
	b.WriteString("=== Chemical Reaction System ===\n")
	fmt.Fprintf(&b, "Compounds (%d):\n", len(i.Compounds))
	for _, c := range i.Compounds {
		fmt.Fprintf(&b, "  %s - %.3f mol/L - MW: %.2f g/mol\n", c.Label, c.Concentration, c.MolarMass)
	}
	fmt.Fprintf(&b, "\nReactions (%d):\n", len(i.Reactions))
	for n, r := range i.Reactions {
		fmt.Fprintf(&b, "  %d. %s (k = %g)\n", n+1, r.Equation, r.RateConstant)
	}
	return b.String()
}
