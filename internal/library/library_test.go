package library_test

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/library"
	"github.com/san-kum/mgxs/internal/mgxs"
)

func angular() mgxs.NuclideData {
	// 2x1 polar/azimuthal grid, P1 scattering, one delayed group
	td := mgxs.TemperatureData{
		Kelvin:           600,
		Total:            [][]float64{{2, 3}, {4, 5}},
		Absorption:       [][]float64{{1, 1}, {1, 2}},
		NuFission:        [][]float64{{0.5, 1}, {0.6, 1.2}},
		DelayedNuFission: [][][]float64{{{0.01, 0.02}}, {{0.01, 0.03}}},
		Chi:              [][]float64{{1, 0}, {1, 0}},
		Scatter: [][][][]float64{
			{{{0.8, 0.2}, {0.2, 0}}, {{0, 0}, {2, 0.5}}},
			{{{2.5, 0.4}, {0.5, 0}}, {{0, 0}, {3, 0.9}}},
		},
		Multiplicity: [][][]float64{
			{{1, 1}, {1, 1}},
			{{1.1, 1}, {1, 1}},
		},
	}
	return mgxs.NuclideData{
		Name: "Pu239", AWR: 236.9986, Fissionable: true, Groups: 2,
		DelayedGroups: 1, Order: 1,
		Angles:       mgxs.AngleGrid{Polar: 2, Azimuthal: 1},
		Temperatures: []mgxs.TemperatureData{td},
	}
}

var _ = Describe("Library", func() {
	var root *container.Node

	BeforeEach(func() {
		root = library.Demo()
	})

	open := func() *library.Library {
		lib, err := library.FromNode("demo", root)
		Expect(err).NotTo(HaveOccurred())
		Expect(lib.ReadHeader()).To(Succeed())
		return lib
	}

	Describe("opening", func() {
		It("rejects a missing file", func() {
			_, err := library.Open(filepath.Join(GinkgoT().TempDir(), "absent.cbor"))
			Expect(err).To(MatchError(mgxs.ErrConfiguration))

			var le *mgxs.LoadError
			Expect(errors.As(err, &le)).To(BeTrue())
			Expect(le.Path).To(HaveSuffix("absent.cbor"))
		})

		It("rejects a wrong file type", func() {
			root.SetAttr("filetype", "hdf5")
			_, err := library.FromNode("demo", root)
			Expect(err).To(MatchError(mgxs.ErrConfiguration))
		})

		It("rejects a version mismatch", func() {
			root.SetAttr("version", []int{2, 0})
			_, err := library.FromNode("demo", root)
			Expect(err).To(MatchError(mgxs.ErrConfiguration))
		})

		It("reads a library written to disk", func() {
			for _, name := range []string{"demo.cbor", "demo.yaml"} {
				path := filepath.Join(GinkgoT().TempDir(), name)
				Expect(container.Write(path, root)).To(Succeed())

				lib, err := library.Open(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(lib.ReadHeader()).To(Succeed())
				Expect(lib.Has("U235")).To(BeTrue())
				Expect(lib.Close()).To(Succeed())
			}
		})
	})

	Describe("header", func() {
		It("returns boundaries in ascending order", func() {
			lib := open()
			gs := lib.GroupStructure()
			Expect(gs.Groups()).To(Equal(2))
			Expect(gs.Boundaries()).To(Equal([]float64{1.0e-5, 0.625, 2.0e7}))
			Expect(gs.LibraryBoundaries()).To(Equal(library.DemoBoundaries))
		})

		It("lists every data set in name order", func() {
			var names []string
			for _, e := range open().Entries() {
				Expect(e.Category).To(Equal(library.Neutron))
				Expect(e.Materials).To(Equal([]string{e.Name}))
				names = append(names, e.Name)
			}
			Expect(names).To(Equal([]string{"H1", "O16", "U235", "U238", "Zr90"}))
		})

		It("fails on an empty library", func() {
			empty, err := library.Encode(library.DemoBoundaries)
			Expect(err).NotTo(HaveOccurred())
			lib, err := library.FromNode("empty", empty)
			Expect(err).NotTo(HaveOccurred())
			Expect(lib.ReadHeader()).To(MatchError(mgxs.ErrEmptyLibrary))
		})

		It("fails when the boundary count disagrees with the group count", func() {
			root.SetAttr("energy_groups", 3)
			lib, err := library.FromNode("demo", root)
			Expect(err).NotTo(HaveOccurred())
			Expect(lib.ReadHeader()).To(MatchError(mgxs.ErrMalformed))
		})
	})

	Describe("loading", func() {
		It("reports tabulated temperatures", func() {
			temps, err := open().Temperatures("H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(temps).To(HaveLen(3))
			for i, k := range library.DemoTemperatures {
				Expect(temps[i]).To(BeNumerically("~", k, 1e-6))
			}
		})

		It("loads only the temperatures nearest to the request", func() {
			lib := open()
			u, err := lib.Load("U235", []float64{605, 590}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Temperatures()).To(HaveLen(1))
			Expect(u.Temperatures()[0]).To(BeNumerically("~", 600, 1e-6))
			Expect(u.AWR()).To(Equal(233.0248))
			Expect(u.Fissionable()).To(BeTrue())
			Expect(lib.Loaded("U235")).To(BeTrue())
		})

		It("loads every temperature for an empty request", func() {
			h, err := open().Load("H1", nil, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Temperatures()).To(HaveLen(3))
			Expect(h.Fissionable()).To(BeFalse())
		})

		It("preserves group order from the file", func() {
			u, err := open().Load("U235", []float64{294}, 1)
			Expect(err).NotTo(HaveOccurred())

			fast, err := u.XS(mgxs.State{}, mgxs.NewRequest(mgxs.Absorption, 0))
			Expect(err).NotTo(HaveOccurred())
			thermal, err := u.XS(mgxs.State{}, mgxs.NewRequest(mgxs.Absorption, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(fast).To(Equal(1.6))
			Expect(thermal).To(Equal(680.0))
		})

		It("fails when no temperature is within tolerance", func() {
			_, err := open().Load("U235", []float64{450}, 10)
			Expect(err).To(MatchError(mgxs.ErrDataAbsent))
		})

		It("fails for a data set missing from the library", func() {
			_, err := open().Load("Xe135", nil, 10)
			Expect(err).To(MatchError(mgxs.ErrDataAbsent))

			var le *mgxs.LoadError
			Expect(errors.As(err, &le)).To(BeTrue())
			Expect(le.Entry).To(Equal("Xe135"))
		})

		It("refuses to load the same data set twice", func() {
			lib := open()
			_, err := lib.Load("O16", nil, 10)
			Expect(err).NotTo(HaveOccurred())
			_, err = lib.Load("O16", nil, 10)
			Expect(err).To(MatchError(mgxs.ErrContractViolation))
		})

		It("refuses to load before the header is read", func() {
			lib, err := library.FromNode("demo", root)
			Expect(err).NotTo(HaveOccurred())
			_, err = lib.Load("O16", nil, 10)
			Expect(err).To(MatchError(mgxs.ErrContractViolation))
		})

		It("rejects a dataset with the wrong shape", func() {
			root.SetDataset("O16/294K/total", []int{3}, []float64{1, 2, 3})
			_, err := open().Load("O16", []float64{294}, 1)
			Expect(err).To(MatchError(mgxs.ErrMalformed))
		})

		It("rejects a data set without the required datasets", func() {
			g, err := root.Group("Zr90/600K")
			Expect(err).NotTo(HaveOccurred())
			delete(g.Datasets, "scatter_matrix")
			_, err = open().Load("Zr90", []float64{600}, 1)
			Expect(err).To(MatchError(mgxs.ErrMalformed))
		})
	})

	Describe("angle representation", func() {
		var u *mgxs.Nuclide

		BeforeEach(func() {
			src := angular()
			tree, err := library.Encode([]float64{2.0e7, 0.625, 1.0e-5}, src)
			Expect(err).NotTo(HaveOccurred())
			lib, err := library.FromNode("angular", tree)
			Expect(err).NotTo(HaveOccurred())
			Expect(lib.ReadHeader()).To(Succeed())
			u, err = lib.Load("Pu239", nil, 10)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the angle grid and expansion order", func() {
			Expect(u.Angles()).To(Equal(mgxs.AngleGrid{Polar: 2, Azimuthal: 1}))
			Expect(u.Order()).To(Equal(1))
			Expect(u.DelayedGroups()).To(Equal(1))
		})

		It("resolves values per angle bin", func() {
			down := u.AngleIndex(mgxs.Direction{W: -1})
			up := u.AngleIndex(mgxs.Direction{W: 1})
			Expect(up).To(Equal(0))
			Expect(down).To(Equal(1))

			v, err := u.XS(mgxs.State{Angle: down}, mgxs.NewRequest(mgxs.Total, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(5.0))

			v, err = u.XS(mgxs.State{Angle: down}, mgxs.NewRequest(mgxs.PromptNuFission, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", 1.17, 1e-12))
		})

		It("unflattens the scattering matrix in file order", func() {
			v, err := u.XS(mgxs.State{}, mgxs.NewRequest(mgxs.Scatter, 0).To(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(0.2))

			v, err = u.XS(mgxs.State{}, mgxs.NewRequest(mgxs.Scatter, 1).To(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(2.0))
		})
	})

	Describe("encoding", func() {
		It("rejects data sets with a different group count", func() {
			d := angular()
			d.Groups = 3
			_, err := library.Encode(library.DemoBoundaries, d)
			Expect(err).To(MatchError(mgxs.ErrMalformed))
		})

		It("rejects duplicate data set names", func() {
			_, err := library.Encode(library.DemoBoundaries, angular(), angular())
			Expect(err).To(MatchError(mgxs.ErrMalformed))
		})
	})
})
