package config

import "sort"

// DemoLibrary is the library path the presets point at; `mgxs demo` writes it.
const DemoLibrary = "demo.cbor"

var Presets = map[string]*Config{
	"pincell": {
		CrossSections:        DemoLibrary,
		TemperatureDefault:   DefaultTemperature,
		TemperatureTolerance: DefaultTolerance,
		Materials: []MaterialConfig{
			{Name: "fuel", Temperatures: []float64{900}, Nuclides: []NuclideConfig{
				{Name: "U235", Density: 7.18e-4},
				{Name: "U238", Density: 2.21e-2},
				{Name: "O16", Density: 4.57e-2},
			}},
			{Name: "gap", Unused: true},
			{Name: "clad", Temperatures: []float64{600}, Nuclides: []NuclideConfig{
				{Name: "Zr90", Density: 4.30e-2},
			}},
			{Name: "water", Temperatures: []float64{600}, Nuclides: []NuclideConfig{
				{Name: "H1", Density: 4.96e-2},
				{Name: "O16", Density: 2.48e-2},
			}},
		},
		Sampling: SamplingConfig{Particles: DefaultParticles, Seed: DefaultSeed},
		Store:    StoreConfig{Driver: DefaultStoreDriver, Path: DefaultStorePath},
	},
	"moderator": {
		CrossSections:        DemoLibrary,
		TemperatureDefault:   DefaultTemperature,
		TemperatureTolerance: DefaultTolerance,
		Materials: []MaterialConfig{
			{Name: "cold water", Nuclides: []NuclideConfig{
				{Name: "H1", Density: 6.69e-2},
				{Name: "O16", Density: 3.34e-2},
			}},
			{Name: "hot water", Temperatures: []float64{600, 900}, Nuclides: []NuclideConfig{
				{Name: "H1", Density: 4.96e-2},
				{Name: "O16", Density: 2.48e-2},
			}},
		},
		Sampling: SamplingConfig{Particles: 20000, Workers: 2, Seed: DefaultSeed},
		Store:    StoreConfig{Driver: DefaultStoreDriver, Path: DefaultStorePath},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Materials = make([]MaterialConfig, len(p.Materials))
	for i, m := range p.Materials {
		m.Temperatures = append([]float64(nil), m.Temperatures...)
		m.Nuclides = append([]NuclideConfig(nil), m.Nuclides...)
		cfg.Materials[i] = m
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
