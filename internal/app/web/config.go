package web

import (
	"github.com/caarlos0/env"
)

// ListenConfig holds the HTTP listener settings of the web frontend.
type ListenConfig struct {
	RunAddr string `env:"RUN_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

// NewListenConfig parses the listener settings from the environment.
func NewListenConfig() (*ListenConfig, error) {
	cfg := &ListenConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
