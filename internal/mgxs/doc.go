// Package mgxs provides multigroup cross-section tables and the lookups made
// on them while particles are tracked.
//
// The package defines the data model shared by the loader and the transport
// side:
//
//   - [GroupStructure]: the energy grid every table is discretized on
//   - [Nuclide]: microscopic data per tabulated temperature and angle bin
//   - [Mixture]: density-weighted macroscopic view over several nuclides
//   - [Arena]: append-only registry addressing nuclides by stable [Handle]
//
// # Lookups
//
// Every table answers queries in two forms. The stateless form takes the
// resolved indices explicitly:
//
//	st := mgxs.State{Temperature: n.TemperatureIndex(600), Angle: n.AngleIndex(dir)}
//	sigmaT, err := n.XS(st, mgxs.NewRequest(mgxs.Total, g))
//
// The cached form keeps the last selection on the table itself:
//
//	n.SelectTemperature(600)
//	n.SelectAngle(dir)
//	sigmaT, err := n.Query(mgxs.NewRequest(mgxs.Total, g))
//
// Nearest-neighbour selection over temperatures and angle bins resolves exact
// midpoints to the lower index.
//
// # Thread Safety
//
// Tables are immutable after construction apart from their [Cursor]. The
// stateless form, including [Mixture.Evaluate], is safe for concurrent use.
// The cached form is not: a table's cursor reflects exactly one particle state
// and must not be driven from two goroutines with different states.
package mgxs
