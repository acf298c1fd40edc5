package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/mgxs/internal/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TemperatureDefault != 293.6 {
		t.Errorf("expected default temperature 293.6, got %g", cfg.TemperatureDefault)
	}
	if cfg.TemperatureTolerance <= 0 {
		t.Error("tolerance should be positive")
	}
	if cfg.Store.Driver != "fs" {
		t.Errorf("expected fs store, got %s", cfg.Store.Driver)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pincell")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Materials) != 4 {
		t.Errorf("expected 4 materials, got %d", len(cfg.Materials))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset does not validate: %v", err)
	}

	cfg.Materials[0].Nuclides[0].Density = 1
	if Presets["pincell"].Materials[0].Nuclides[0].Density == 1 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"moderator", "pincell"}, ListPresets()); diff != "" {
		t.Errorf("presets mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CrossSections = "lib.cbor"
	cfg.Materials = []MaterialConfig{
		{Name: "fuel", Temperatures: []float64{900, 600}, Nuclides: []NuclideConfig{
			{Name: "U235", Density: 1e-3},
			{Name: "O16", Density: 4e-2},
		}},
		{Name: "water", Nuclides: []NuclideConfig{
			{Name: "H1", Density: 6e-2},
			{Name: "O16", Density: 3e-2},
		}},
		{Name: "gap", Unused: true, Temperatures: []float64{600}, Nuclides: []NuclideConfig{
			{Name: "He4", Density: 1e-5},
		}},
	}

	want := engine.Ingest{
		NuclideNames: []string{"U235", "O16", "H1", "He4"},
		Materials: []engine.Material{
			{Name: "fuel", Nuclides: []int{0, 1}, Densities: []float64{1e-3, 4e-2}, Temperatures: []float64{900, 600}},
			{Name: "water", Nuclides: []int{2, 1}, Densities: []float64{6e-2, 3e-2}, Temperatures: []float64{293.6}},
			{Name: "gap", Nuclides: []int{3}, Densities: []float64{1e-5}},
		},
		Tolerance: 10,
	}
	if diff := cmp.Diff(want, cfg.Resolve()); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no library", func(c *Config) { c.CrossSections = "" }, "cross_sections"},
		{"negative tolerance", func(c *Config) { c.TemperatureTolerance = -1 }, "temperature_tolerance"},
		{"unnamed material", func(c *Config) { c.Materials[0].Name = "" }, "no name"},
		{"duplicate material", func(c *Config) { c.Materials[1].Name = c.Materials[0].Name }, "defined twice"},
		{"duplicate nuclide", func(c *Config) {
			c.Materials[0].Nuclides = append(c.Materials[0].Nuclides, c.Materials[0].Nuclides[0])
		}, "listed twice"},
		{"negative density", func(c *Config) { c.Materials[0].Nuclides[0].Density = -1 }, "negative density"},
		{"zero temperature", func(c *Config) { c.Materials[0].Temperatures = []float64{0} }, "temperature"},
		{"negative workers", func(c *Config) { c.Sampling.Workers = -2 }, "workers"},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, "store driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("pincell")
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	in := GetPreset("moderator")
	if err := Save(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	src := "cross_sections: lib.cbor\nmaterials:\n  - name: water\n    nuclides:\n      - {name: H1, density: 0.06}\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TemperatureTolerance != DefaultTolerance || cfg.Sampling.Particles != DefaultParticles {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if got := cfg.Resolve().Materials[0].Temperatures; len(got) != 1 || got[0] != DefaultTemperature {
		t.Errorf("expected default temperature, got %v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MGXS_CROSS_SECTIONS", "/data/lib.cbor")
	t.Setenv("MGXS_STORE_DRIVER", "sqlite")

	cfg := DefaultConfig()
	cfg.CrossSections = "local.cbor"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.CrossSections != "/data/lib.cbor" {
		t.Errorf("expected env library path, got %s", cfg.CrossSections)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Store.Driver)
	}
	if cfg.Store.Path != DefaultStorePath {
		t.Errorf("unset variable changed store path to %s", cfg.Store.Path)
	}
}
