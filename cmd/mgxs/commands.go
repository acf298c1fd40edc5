package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/mgxs/internal/config"
	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/engine"
	"github.com/san-kum/mgxs/internal/library"
	"github.com/san-kum/mgxs/internal/metrics"
	"github.com/san-kum/mgxs/internal/mgxs"
	"github.com/san-kum/mgxs/internal/query"
	"github.com/san-kum/mgxs/internal/sample"
	"github.com/san-kum/mgxs/internal/storage"
)

func showInfo(cmd *cobra.Command, args []string) error {
	path := libPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		cfg, err := settings()
		if err != nil {
			return err
		}
		path = cfg.CrossSections
	}

	lib, err := library.Open(path, library.WithLogger(logger))
	if err != nil {
		return err
	}
	defer lib.Close()
	if err := lib.ReadHeader(); err != nil {
		return err
	}

	gs := lib.GroupStructure()
	fmt.Printf("library: %s\n", path)
	fmt.Printf("groups: %d\n\n", gs.Groups())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tUPPER (eV)\tLOWER (eV)")
	bounds := gs.LibraryBoundaries()
	for g := 0; g < gs.Groups(); g++ {
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\n", g+1, bounds[g], bounds[g+1])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tTEMPERATURES (K)")
	for _, e := range lib.Entries() {
		temps, err := lib.Temperatures(e.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.Category, formatTemps(temps))
	}
	return w.Flush()
}

func formatTemps(temps []float64) string {
	if len(temps) == 0 {
		return "-"
	}
	parts := make([]string, len(temps))
	for i, t := range temps {
		parts[i] = fmt.Sprintf("%.1f", t)
	}
	return strings.Join(parts, ", ")
}

func openEngine(ctx context.Context, cfg *config.Config, opts ...engine.Option) (*engine.Engine, error) {
	opts = append([]engine.Option{engine.WithLogger(logger)}, opts...)
	return engine.Open(ctx, cfg.CrossSections, cfg.Resolve(), opts...)
}

func loadMaterials(cmd *cobra.Command, args []string) error {
	cfg, err := settings()
	if err != nil {
		return err
	}
	eng, err := openEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Printf("library: %s\n", cfg.CrossSections)
	fmt.Printf("nuclides: %s\n\n", strings.Join(eng.Arena().Names(), ", "))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tMATERIAL\tNUCLIDES\tTEMPERATURES (K)\tFISSIONABLE")
	for i, m := range eng.Mixtures() {
		if m.Empty() {
			fmt.Fprintf(w, "%d\t%s\t-\t-\tplaceholder\n", i+1, m.Name())
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%v\n", i+1, m.Name(), len(m.Handles()), formatTemps(m.Temperatures()), m.Fissionable())
	}
	return w.Flush()
}

func queryXS(cmd *cobra.Command, args []string) error {
	kind, err := mgxs.ParseKind(kindName)
	if err != nil {
		return err
	}
	if len(direction) != 3 {
		return fmt.Errorf("direction needs three cosines, got %d", len(direction))
	}
	d := mgxs.Direction{U: direction[0], V: direction[1], W: direction[2]}

	cfg, err := settings()
	if err != nil {
		return err
	}
	eng, err := openEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	f := query.New(eng)
	req := query.Request{Kind: kind, Group: group, Out: outGroup, Delayed: delayed}
	if cmd.Flags().Changed("cosine") {
		req.Cosine = &cosine
	}
	sqrtKT := mgxs.SqrtKTFromKelvin(temperature)

	var (
		label string
		value float64
	)
	if nuclideIdx != 0 {
		if err := f.SetNuclideTemperature(nuclideIdx, sqrtKT); err != nil {
			return err
		}
		if err := f.SetNuclideAngle(nuclideIdx, d); err != nil {
			return err
		}
		if value, err = f.NuclideXS(nuclideIdx, req); err != nil {
			return err
		}
		name, _ := f.NuclideName(nuclideIdx)
		label = "nuclide " + name + " (b)"
	} else {
		if err := f.SetMacroTemperature(materialIdx, sqrtKT); err != nil {
			return err
		}
		if err := f.SetMacroAngle(materialIdx, d); err != nil {
			return err
		}
		if value, err = f.MacroXS(materialIdx, req); err != nil {
			return err
		}
		m, _ := eng.Mixture(materialIdx - 1)
		label = "material " + m.Name() + " (1/cm)"
	}

	fmt.Printf("%s %s group %d at %.1f K: %.6g\n", label, kind, group, temperature, value)
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	st, err := storage.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func benchLookups(cmd *cobra.Command, args []string) error {
	cfg, err := settings()
	if err != nil {
		return err
	}
	if particles > 0 {
		cfg.Sampling.Particles = particles
	}
	if workers > 0 {
		cfg.Sampling.Workers = workers
	}
	if seed != 0 {
		cfg.Sampling.Seed = seed
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	collector := metrics.NewCollector()
	eng, err := openEngine(ctx, cfg, engine.WithMetrics(collector))
	if err != nil {
		return err
	}
	defer eng.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("sampling lookups",
		zap.Int("particles", cfg.Sampling.Particles),
		zap.Int("workers", cfg.Sampling.Workers),
		zap.Int64("seed", cfg.Sampling.Seed))

	res, err := sample.Run(ctx, eng, sample.Config{
		Particles: cfg.Sampling.Particles,
		Workers:   cfg.Sampling.Workers,
		Seed:      cfg.Sampling.Seed,
	})
	if err != nil {
		return err
	}

	rows := res.Rows()
	runID, err := st.Save(storage.NewRunMetadata(cfg.CrossSections, res), rows)
	if err != nil {
		return err
	}

	fmt.Printf("completed %d lookups on %d workers in %v\n", res.Particles, res.Workers, res.Duration.Round(time.Microsecond))
	fmt.Printf("run id: %s\n\n", runID)
	if err := printRows(rows); err != nil {
		return err
	}

	if showMetrics {
		fmt.Println()
		return collector.WriteText(os.Stdout)
	}
	return nil
}

func printRows(rows []sample.Row) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tGROUP\tSAMPLES\tTOTAL\tABSORPTION\tNU-FISSION")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.6g\t%.6g\t%.6g\n", r.Material, r.Group, r.Samples, r.Total, r.Absorption, r.NuFission)
	}
	return w.Flush()
}

func storeFromFlags() (storage.Store, error) {
	cfg, err := settings()
	if err != nil {
		// listing runs does not need a library
		cfg = config.DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
		if dataDir != "" {
			cfg.Store.Path = dataDir
		}
		if storeKind != "" {
			cfg.Store.Driver = storeKind
		}
	}
	return openStore(cfg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLIBRARY\tTIME\tPARTICLES\tWORKERS\tSEED\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.3fs\n",
			run.ID,
			run.Library,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Workers,
			run.Seed,
			run.Duration,
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer st.Close()

	if exportPath != "" {
		if err := storage.ExportJSONFile(exportPath, st, args[0]); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", args[0], exportPath)
		return nil
	}
	return storage.ExportJSON(os.Stdout, st, args[0])
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := storeFromFlags()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("library: %s\n", meta.Library)
	fmt.Printf("lookups: %d\n\n", meta.Particles)

	byMaterial := make(map[string][]float64)
	for _, r := range rows {
		byMaterial[r.Material] = append(byMaterial[r.Material], r.Total)
	}
	for _, name := range meta.Materials {
		data := byMaterial[name]
		if len(data) < 2 {
			continue
		}
		flat := true
		for _, v := range data {
			if v != 0 {
				flat = false
			}
		}
		if flat {
			fmt.Printf("%s: no cross section data\n\n", name)
			continue
		}
		// log scale; groups run from fast to thermal
		logData := make([]float64, len(data))
		for i, v := range data {
			logData[i] = math.Log10(math.Max(v, 1e-12))
		}
		graph := asciigraph.Plot(logData,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("%s: log10 total (1/cm) by group", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func buildLibrary(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]
	root, err := container.Read(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	lib, err := library.FromNode(src, root, library.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := lib.ReadHeader(); err != nil {
		return err
	}
	for _, e := range lib.Entries() {
		if _, err := lib.Load(e.Name, nil, 0); err != nil {
			return err
		}
	}

	if err := container.Write(dst, root); err != nil {
		return err
	}
	fmt.Printf("wrote %d data sets (%d groups) to %s\n", len(lib.Entries()), lib.GroupStructure().Groups(), dst)
	return nil
}

func writeDemo(cmd *cobra.Command, args []string) error {
	path := config.DemoLibrary
	if len(args) > 0 {
		path = args[0]
	}
	if err := container.Write(path, library.Demo()); err != nil {
		return err
	}
	fmt.Printf("wrote demo library to %s (%s)\n", path, container.FormatFor(path))
	return nil
}
