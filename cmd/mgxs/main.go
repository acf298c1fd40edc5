package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/mgxs/internal/config"
)

var (
	logger *zap.Logger

	verbose    bool
	configFile string
	preset     string
	libPath    string
	dataDir    string
	storeKind  string

	// xs
	materialIdx int
	nuclideIdx  int
	kindName    string
	group       int
	outGroup    int
	delayed     int
	cosine      float64
	temperature float64
	direction   []float64

	// bench
	particles   int
	workers     int
	seed        int64
	showMetrics bool

	exportPath string
)

// main registers the commands and exits with status 1 if one returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mgxs",
		Short:         "multigroup cross section engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a built-in settings preset")
	rootCmd.PersistentFlags().StringVar(&libPath, "library", "", "cross sections library (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run store path (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "run store driver: fs or sqlite (overrides settings)")

	infoCmd := &cobra.Command{
		Use:   "info [library]",
		Short: "show library header and catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "ingest the configured materials and summarize them",
		RunE:  loadMaterials,
	}

	xsCmd := &cobra.Command{
		Use:   "xs",
		Short: "query one cross section",
		RunE:  queryXS,
	}
	xsCmd.Flags().IntVar(&materialIdx, "material", 1, "material (1-based)")
	xsCmd.Flags().IntVar(&nuclideIdx, "nuclide", 0, "nuclide (1-based); queries the material when 0")
	xsCmd.Flags().StringVar(&kindName, "kind", "total", "cross section kind")
	xsCmd.Flags().IntVar(&group, "group", 1, "incoming group (1-based)")
	xsCmd.Flags().IntVar(&outGroup, "out", 0, "outgoing group (1-based); integrated when 0")
	xsCmd.Flags().IntVar(&delayed, "delayed", 0, "delayed group (1-based); summed when 0")
	xsCmd.Flags().Float64Var(&cosine, "cosine", 0, "scattering cosine for angle-resolved scattering")
	xsCmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "temperature (K)")
	xsCmd.Flags().Float64SliceVar(&direction, "direction", []float64{0, 0, 1}, "direction cosines u,v,w")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "sample lookups in parallel and store the tallies",
		RunE:  benchLookups,
	}
	benchCmd.Flags().IntVar(&particles, "particles", 0, "particles (settings value when 0)")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "workers (settings value, then one per CPU, when 0)")
	benchCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (settings value when 0)")
	benchCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print prometheus metrics after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (stdout when empty)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot mean cross sections by group",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	buildCmd := &cobra.Command{
		Use:   "build [source.yaml] [library.cbor]",
		Short: "validate a yaml library source and write it as a binary library",
		Args:  cobra.ExactArgs(2),
		RunE:  buildLibrary,
	}

	demoCmd := &cobra.Command{
		Use:   "demo [path]",
		Short: "write the built-in two-group demo library",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeDemo,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in settings presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-10s %d materials, library %s\n", p, len(cfg.Materials), cfg.CrossSections)
			}
			return nil
		},
	}

	rootCmd.AddCommand(infoCmd, loadCmd, xsCmd, benchCmd, listCmd, exportCmd, plotCmd, buildCmd, demoCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// settings resolves the preset or settings file, then applies command line
// overrides.
func settings() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		cfg = config.DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	}

	if libPath != "" {
		cfg.CrossSections = libPath
	}
	if dataDir != "" {
		cfg.Store.Path = dataDir
	}
	if storeKind != "" {
		cfg.Store.Driver = storeKind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
