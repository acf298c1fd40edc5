package mgxs

// Table is the query contract shared by nuclides and mixtures.
type Table interface {
	Name() string
	Fissionable() bool
	Groups() int
	Temperatures() []float64
	TemperatureIndex(kelvin float64) int
	AngleIndex(d Direction) int
	XS(st State, r Request) (float64, error)

	SelectTemperature(kelvin float64)
	SelectAngle(d Direction)
	Query(r Request) (float64, error)
	Cursor() Cursor
}

var (
	_ Table = (*Nuclide)(nil)
	_ Table = (*Mixture)(nil)
)
