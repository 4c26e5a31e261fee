package kinetics_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chemsim/internal/kinetics"
)

var _ = Describe("Reaction system", func() {
	var (
		reg     *kinetics.Registry
		a, b, c *kinetics.Compound
	)

	BeforeEach(func() {
		var err error
		reg = kinetics.NewRegistry()
		a, err = reg.Register("A", kinetics.WithName("Reactant A"))
		Expect(err).NotTo(HaveOccurred())
		b, err = reg.Register("B", kinetics.WithName("Reactant B"))
		Expect(err).NotTo(HaveOccurred())
		c, err = reg.Register("C", kinetics.WithName("Product C"))
		Expect(err).NotTo(HaveOccurred())
	})

	abToC := func(k float64) *kinetics.System {
		r, err := kinetics.NewReaction(
			[]kinetics.Term{{Compound: a, Coefficient: 1}, {Compound: b, Coefficient: 1}},
			[]kinetics.Term{{Compound: c, Coefficient: 1}},
			k,
		)
		Expect(err).NotTo(HaveOccurred())
		return kinetics.NewSystem(r)
	}

	Context("A + B → C with k=0.1 over [0, 100]", func() {
		var traj *kinetics.Trajectory

		BeforeEach(func() {
			var err error
			traj, err = abToC(0.1).Simulate(
				map[string]float64{"A": 1.0, "B": 0.5, "C": 0.0},
				kinetics.Linspace(0, 100, 1000),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		It("produces one value per time point for every species", func() {
			for _, f := range []string{"A", "B", "C"} {
				Expect(traj.Of(f)).To(HaveLen(1000))
			}
			Expect(traj.Of("A")[0]).To(Equal(1.0))
			Expect(traj.Of("B")[0]).To(Equal(0.5))
			Expect(traj.Of("C")[0]).To(Equal(0.0))
		})

		It("never decreases [C]", func() {
			cs := traj.Of("C")
			for i := 1; i < len(cs); i++ {
				Expect(cs[i]).To(BeNumerically(">=", cs[i-1]))
			}
		})

		It("bounds [C] by the limiting reagent", func() {
			for _, v := range traj.Of("C") {
				Expect(v).To(BeNumerically("<=", 0.5+1e-12))
			}
		})

		It("keeps every concentration non-negative", func() {
			for _, s := range traj.Series {
				for _, v := range s {
					Expect(v).To(BeNumerically(">=", 0))
				}
			}
		})

		It("conserves A - B", func() {
			for i := range traj.Times {
				Expect(traj.Of("A")[i] - traj.Of("B")[i]).To(BeNumerically("~", 0.5, 1e-12))
			}
		})
	})

	It("is deterministic across repeated runs", func() {
		sys := abToC(0.1)
		initial := map[string]float64{"A": 1.0, "B": 0.5}
		times := kinetics.Linspace(0, 100, 1000)

		first, err := sys.Simulate(initial, times)
		Expect(err).NotTo(HaveOccurred())
		second, err := sys.Simulate(initial, times)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Series).To(Equal(first.Series))
	})

	It("runs independent simulations concurrently on a shared graph", func() {
		sys := abToC(0.1)
		times := kinetics.Linspace(0, 10, 200)
		reference, err := sys.Simulate(map[string]float64{"A": 1, "B": 0.5}, times)
		Expect(err).NotTo(HaveOccurred())

		var wg sync.WaitGroup
		results := make([]*kinetics.Trajectory, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				tr, err := sys.SimulateContext(context.Background(), map[string]float64{"A": 1, "B": 0.5}, times)
				Expect(err).NotTo(HaveOccurred())
				results[i] = tr
			}(i)
		}
		wg.Wait()

		for _, tr := range results {
			Expect(tr.Series).To(Equal(reference.Series))
		}
	})

	It("rejects a system with no reactions before computing anything", func() {
		obs := &recorder{}
		traj, err := kinetics.NewSystem().SimulateContext(context.Background(),
			map[string]float64{"A": 1}, kinetics.Linspace(0, 1, 10), kinetics.WithObserver(obs))

		Expect(err).To(MatchError(kinetics.ErrEmptySystem))
		Expect(traj).To(BeNil())
		Expect(obs.calls).To(BeZero())
	})

	It("treats an absent reactant as a zero rate only while it is absent", func() {
		r, err := kinetics.NewReaction(
			[]kinetics.Term{{Compound: a, Coefficient: 1}},
			[]kinetics.Term{{Compound: b, Coefficient: 1}},
			1,
		)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Rate(map[string]float64{"B": 1})).To(Equal(0.0))
		Expect(r.Rate(map[string]float64{"A": 0.5})).To(Equal(0.5))
	})

	Describe("compounds", func() {
		It("parses NaCl and sums its atomic masses", func() {
			nacl, err := kinetics.NewCompound("NaCl")
			Expect(err).NotTo(HaveOccurred())
			Expect(nacl.Composition().Map()).To(Equal(map[string]int{"Na": 1, "Cl": 1}))

			mass, err := nacl.MolarMass()
			Expect(err).NotTo(HaveOccurred())
			Expect(mass).To(BeNumerically("~", 58.44, 1e-9))
		})

		It("gives a generic species exactly the default mass", func() {
			mass, err := a.MolarMass()
			Expect(err).NotTo(HaveOccurred())
			Expect(mass).To(Equal(kinetics.DefaultAtomicMass))
			Expect(a.Generic()).To(BeTrue())
		})

		It("returns the same species for a repeated formula", func() {
			again, err := reg.Register("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(BeIdenticalTo(a))
		})
	})
})

type recorder struct {
	calls int
}

func (r *recorder) OnStep(step int, x kinetics.State, t float64) {
	r.calls++
}
