package metrics

// Tally accumulates macroscopic cross sections observed at one
// (material, group) cell of a sampling run.
type Tally struct {
	name       string
	samples    int
	total      float64
	absorption float64
	nuFission  float64
}

func NewTally(name string) *Tally {
	return &Tally{name: name}
}

func (t *Tally) Name() string { return t.name }

func (t *Tally) Observe(total, absorption, nuFission float64) {
	t.total += total
	t.absorption += absorption
	t.nuFission += nuFission
	t.samples++
}

// Value is the mean total cross section.
func (t *Tally) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.total / float64(t.samples)
}

// Means returns the mean total, absorption and nu-fission cross sections.
func (t *Tally) Means() (total, absorption, nuFission float64) {
	if t.samples == 0 {
		return 0, 0, 0
	}
	n := float64(t.samples)
	return t.total / n, t.absorption / n, t.nuFission / n
}

func (t *Tally) Samples() int { return t.samples }

// Merge adds the observations of o.
func (t *Tally) Merge(o *Tally) {
	t.samples += o.samples
	t.total += o.total
	t.absorption += o.absorption
	t.nuFission += o.nuFission
}

func (t *Tally) Reset() {
	t.total = 0
	t.absorption = 0
	t.nuFission = 0
	t.samples = 0
}
