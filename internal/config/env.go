package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings taken from the process environment.
type Env struct {
	DataDir   string `env:"CHEMSIM_DATA_DIR" envDefault:".chemsim"`
	Store     string `env:"CHEMSIM_STORE" envDefault:"file"`
	Workers   int    `env:"CHEMSIM_WORKERS" envDefault:"4"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
