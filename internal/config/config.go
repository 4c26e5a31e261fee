package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/chemsim/internal/kinetics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTime       = 100.0
	DefaultSteps      = 1000
	DefaultIntegrator = "euler"
)

// Config describes a reaction system and how to simulate it. The same
// schema loads from YAML or JSON.
type Config struct {
	Time       float64          `yaml:"time" json:"time"`
	Steps      int              `yaml:"steps" json:"steps"`
	Integrator string           `yaml:"integrator" json:"integrator"`
	Compounds  []CompoundConfig `yaml:"compounds" json:"compounds"`
	Reactions  []ReactionConfig `yaml:"reactions" json:"reactions"`
}

type CompoundConfig struct {
	Formula       string   `yaml:"formula" json:"formula"`
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	Concentration float64  `yaml:"concentration" json:"concentration"`
	MolarMass     *float64 `yaml:"molar_mass,omitempty" json:"molar_mass,omitempty"`
}

type SideConfig struct {
	Formulas     []string `yaml:"formulas" json:"formulas"`
	Coefficients []int    `yaml:"coefficients" json:"coefficients"`
}

type ReactionConfig struct {
	Reactants    SideConfig `yaml:"reactants" json:"reactants"`
	Products     SideConfig `yaml:"products" json:"products"`
	RateConstant float64    `yaml:"rate_constant" json:"rate_constant"`
	Order        int        `yaml:"order,omitempty" json:"order,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Time:       DefaultTime,
		Steps:      DefaultSteps,
		Integrator: DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML or JSON config data over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as JSON when path ends in .json and as YAML otherwise.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the config without building any kinetics objects beyond
// formula parsing.
func (c *Config) Validate() error {
	var errs []error
	if c.Time <= 0 {
		errs = append(errs, fmt.Errorf("time must be positive, got %v", c.Time))
	}
	if c.Steps < 2 {
		errs = append(errs, fmt.Errorf("steps must be at least 2, got %d", c.Steps))
	}

	seen := make(map[string]bool, len(c.Compounds))
	for i, cc := range c.Compounds {
		if _, err := kinetics.ParseFormulaStrict(cc.Formula); err != nil {
			errs = append(errs, fmt.Errorf("compounds[%d]: %w", i, err))
		}
		if seen[cc.Formula] {
			errs = append(errs, fmt.Errorf("compounds[%d]: duplicate formula %q", i, cc.Formula))
		}
		seen[cc.Formula] = true
		if cc.Concentration < 0 {
			errs = append(errs, fmt.Errorf("compounds[%d]: %w", i, kinetics.ErrNegativeConcentration))
		}
		if cc.MolarMass != nil && *cc.MolarMass < 0 {
			errs = append(errs, fmt.Errorf("compounds[%d]: %w", i, kinetics.ErrInvalidMolarMass))
		}
	}

	for i, rc := range c.Reactions {
		if err := rc.Reactants.validate(); err != nil {
			errs = append(errs, fmt.Errorf("reactions[%d].reactants: %w", i, err))
		}
		if err := rc.Products.validate(); err != nil {
			errs = append(errs, fmt.Errorf("reactions[%d].products: %w", i, err))
		}
		if rc.RateConstant < 0 {
			errs = append(errs, fmt.Errorf("reactions[%d]: %w", i, kinetics.ErrInvalidRateConstant))
		}
	}
	return errors.Join(errs...)
}

func (s SideConfig) validate() error {
	if len(s.Formulas) != len(s.Coefficients) {
		return fmt.Errorf("%d formulas but %d coefficients", len(s.Formulas), len(s.Coefficients))
	}
	for i, f := range s.Formulas {
		if _, err := kinetics.ParseFormulaStrict(f); err != nil {
			return err
		}
		if s.Coefficients[i] < 1 {
			return fmt.Errorf("%w: %s has %d", kinetics.ErrInvalidCoefficient, f, s.Coefficients[i])
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Compounds = make([]CompoundConfig, len(c.Compounds))
	for i, cc := range c.Compounds {
		out.Compounds[i] = cc
		if cc.MolarMass != nil {
			m := *cc.MolarMass
			out.Compounds[i].MolarMass = &m
		}
	}
	out.Reactions = make([]ReactionConfig, len(c.Reactions))
	for i, rc := range c.Reactions {
		rc.Reactants.Formulas = append([]string(nil), rc.Reactants.Formulas...)
		rc.Reactants.Coefficients = append([]int(nil), rc.Reactants.Coefficients...)
		rc.Products.Formulas = append([]string(nil), rc.Products.Formulas...)
		rc.Products.Coefficients = append([]int(nil), rc.Products.Coefficients...)
		out.Reactions[i] = rc
	}
	return &out
}

// Example returns the A + B → C system the CLI falls back to.
func Example() *Config {
	return GetPreset("ab_to_c")
}

// WriteExample writes the example config to path.
func WriteExample(path string) error {
	return Save(path, Example())
}
