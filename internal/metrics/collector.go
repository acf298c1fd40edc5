// Package metrics holds sampling tallies and the Prometheus instruments
// recorded while loading and querying cross sections.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "mgxs"

// Collector owns a private registry so several runs in one process do not
// collide.
type Collector struct {
	reg *prometheus.Registry

	nuclidesLoaded prometheus.Counter
	loadSeconds    prometheus.Histogram
	materials      prometheus.Gauge
	placeholders   prometheus.Gauge
	lookups        *prometheus.CounterVec
	runSeconds     prometheus.Histogram
}

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		nuclidesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nuclides_loaded_total",
			Help:      "Nuclide tables loaded from cross section libraries.",
		}),
		loadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nuclide_load_seconds",
			Help:      "Time spent decoding one nuclide table.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		materials: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "materials",
			Help:      "Macroscopic mixtures built by the last ingest.",
		}),
		placeholders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "placeholder_materials",
			Help:      "Mixtures with no tracked temperature.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Macroscopic cross section evaluations by material.",
		}, []string{"material"}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sampling_run_seconds",
			Help:      "Wall time of sampling runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	c.reg.MustRegister(c.nuclidesLoaded, c.loadSeconds, c.materials, c.placeholders, c.lookups, c.runSeconds)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) NuclideLoaded(d time.Duration) {
	if c == nil {
		return
	}
	c.nuclidesLoaded.Inc()
	c.loadSeconds.Observe(d.Seconds())
}

func (c *Collector) Ingested(materials, placeholders int) {
	if c == nil {
		return
	}
	c.materials.Set(float64(materials))
	c.placeholders.Set(float64(placeholders))
}

func (c *Collector) Lookups(material string, n int) {
	if c == nil {
		return
	}
	c.lookups.WithLabelValues(material).Add(float64(n))
}

func (c *Collector) RunFinished(d time.Duration) {
	if c == nil {
		return
	}
	c.runSeconds.Observe(d.Seconds())
}

// WriteText writes every registered metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
