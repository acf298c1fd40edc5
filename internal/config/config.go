package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mgxs/internal/engine"
)

const (
	DefaultTemperature = 293.6
	DefaultTolerance   = 10.0
	DefaultParticles   = 100000
	DefaultSeed        = 1
	DefaultStoreDriver = "fs"
	DefaultStorePath   = "runs"
)

type Config struct {
	CrossSections        string           `yaml:"cross_sections"`
	TemperatureDefault   float64          `yaml:"temperature_default"`
	TemperatureTolerance float64          `yaml:"temperature_tolerance"`
	Materials            []MaterialConfig `yaml:"materials"`
	Sampling             SamplingConfig   `yaml:"sampling"`
	Store                StoreConfig      `yaml:"store"`
}

type MaterialConfig struct {
	Name         string          `yaml:"name"`
	Temperatures []float64       `yaml:"temperatures,omitempty,flow"`
	Unused       bool            `yaml:"unused,omitempty"`
	Nuclides     []NuclideConfig `yaml:"nuclides"`
}

type NuclideConfig struct {
	Name    string  `yaml:"name"`
	Density float64 `yaml:"density"`
}

type SamplingConfig struct {
	Particles int   `yaml:"particles"`
	Workers   int   `yaml:"workers"`
	Seed      int64 `yaml:"seed"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type overrides struct {
	CrossSections string `env:"MGXS_CROSS_SECTIONS"`
	StoreDriver   string `env:"MGXS_STORE_DRIVER"`
	StorePath     string `env:"MGXS_STORE_PATH"`
}

func DefaultConfig() *Config {
	return &Config{
		TemperatureDefault:   DefaultTemperature,
		TemperatureTolerance: DefaultTolerance,
		Sampling: SamplingConfig{
			Particles: DefaultParticles,
			Seed:      DefaultSeed,
		},
		Store: StoreConfig{
			Driver: DefaultStoreDriver,
			Path:   DefaultStorePath,
		},
	}
}

// Load reads a YAML settings file over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides the library path and store settings from MGXS_*
// environment variables that are set.
func (c *Config) ApplyEnv() error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.CrossSections != "" {
		c.CrossSections = o.CrossSections
	}
	if o.StoreDriver != "" {
		c.Store.Driver = o.StoreDriver
	}
	if o.StorePath != "" {
		c.Store.Path = o.StorePath
	}
	return nil
}

func (c *Config) Validate() error {
	if c.CrossSections == "" {
		return fmt.Errorf("cross_sections is not set")
	}
	if c.TemperatureDefault <= 0 {
		return fmt.Errorf("temperature_default must be positive, got %g", c.TemperatureDefault)
	}
	if c.TemperatureTolerance < 0 {
		return fmt.Errorf("temperature_tolerance must not be negative, got %g", c.TemperatureTolerance)
	}
	seen := make(map[string]bool, len(c.Materials))
	for i, m := range c.Materials {
		if m.Name == "" {
			return fmt.Errorf("material %d has no name", i+1)
		}
		if seen[m.Name] {
			return fmt.Errorf("material %s defined twice", m.Name)
		}
		seen[m.Name] = true
		for _, t := range m.Temperatures {
			if t <= 0 {
				return fmt.Errorf("material %s: temperature must be positive, got %g", m.Name, t)
			}
		}
		nuclides := make(map[string]bool, len(m.Nuclides))
		for _, n := range m.Nuclides {
			if n.Name == "" {
				return fmt.Errorf("material %s: nuclide without a name", m.Name)
			}
			if nuclides[n.Name] {
				return fmt.Errorf("material %s: nuclide %s listed twice", m.Name, n.Name)
			}
			nuclides[n.Name] = true
			if n.Density < 0 {
				return fmt.Errorf("material %s: negative density for %s", m.Name, n.Name)
			}
		}
	}
	if c.Sampling.Particles < 0 {
		return fmt.Errorf("sampling.particles must not be negative")
	}
	if c.Sampling.Workers < 0 {
		return fmt.Errorf("sampling.workers must not be negative")
	}
	switch c.Store.Driver {
	case "fs", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// Resolve converts the materials into the ingest form: a nuclide name table
// in order of first appearance and per-material indices into it.
func (c *Config) Resolve() engine.Ingest {
	in := engine.Ingest{
		Materials: make([]engine.Material, len(c.Materials)),
		Tolerance: c.TemperatureTolerance,
	}
	index := make(map[string]int)
	for i, m := range c.Materials {
		mat := engine.Material{
			Name:      m.Name,
			Nuclides:  make([]int, len(m.Nuclides)),
			Densities: make([]float64, len(m.Nuclides)),
		}
		for j, n := range m.Nuclides {
			idx, ok := index[n.Name]
			if !ok {
				idx = len(in.NuclideNames)
				index[n.Name] = idx
				in.NuclideNames = append(in.NuclideNames, n.Name)
			}
			mat.Nuclides[j] = idx
			mat.Densities[j] = n.Density
		}
		switch {
		case m.Unused:
		case len(m.Temperatures) > 0:
			mat.Temperatures = append([]float64(nil), m.Temperatures...)
		default:
			mat.Temperatures = []float64{c.TemperatureDefault}
		}
		in.Materials[i] = mat
	}
	return in
}
