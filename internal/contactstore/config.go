package contactstore

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment settings of `contacts serve`.
type Config struct {
	Port int    `env:"CONTACTS_STORE_PORT" envDefault:"3001"`
	Host string `env:"CONTACTS_STORE_HOST" envDefault:"localhost"`
	Seed string `env:"CONTACTS_STORE_SEED"` // Optional JSON seed file
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse store config: %w", err)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid store port %d", cfg.Port)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewStore builds a store, seeded from c.Seed when set.
func (c Config) NewStore() (*Inmem, error) {
	if c.Seed == "" {
		return NewInmem(), nil
	}
	cs, err := LoadSeed(c.Seed)
	if err != nil {
		return nil, err
	}
	return NewInmem(cs...), nil
}
