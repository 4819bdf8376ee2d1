package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/vmath"
)

type countingMetric struct {
	observed int
	resets   int
}

func (m *countingMetric) Name() string          { return "count" }
func (m *countingMetric) Observe(*sim.Universe) { m.observed++ }
func (m *countingMetric) Value() float64        { return float64(m.observed) }
func (m *countingMetric) Reset()                { m.observed = 0; m.resets++ }

type timeObserver struct{ times []float64 }

func (o *timeObserver) OnStep(u *sim.Universe) { o.times = append(o.times, u.Time()) }

var _ = Describe("Simulator", func() {
	var (
		u    *sim.Universe
		body *dynamo.Body
	)

	BeforeEach(func() {
		u = sim.NewUniverse(false)
		body = point(2, vmath.V0, vmath.Vx)
		body.SetName("drifter")
		u.Add(body)
	})

	It("samples, observes and collects metrics", func() {
		s := sim.New(u)
		m := &countingMetric{}
		o := &timeObserver{}
		s.AddMetric(m)
		s.AddObserver(o)

		res, err := s.Run(context.Background(), sim.Config{Dt: 0.25, Duration: 1, SampleEvery: 2})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.StepsTaken).To(Equal(4))
		Expect(res.Errors).To(BeEmpty())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 5.0))
		Expect(m.resets).To(Equal(1))
		Expect(o.times).To(Equal([]float64{0.25, 0.5, 0.75, 1}))

		Expect(res.Samples).To(HaveLen(3))
		Expect(res.Samples[0].Time).To(Equal(0.0))
		Expect(res.Samples[2].Time).To(Equal(1.0))
		last := res.Samples[2].Bodies[0]
		Expect(last.Name).To(Equal("drifter"))
		Expect(last.Mass).To(Equal(2.0))
		expectV(last.CM, vmath.Vx)
		Expect(s.Universe()).To(BeIdenticalTo(u))
	})

	DescribeTable("rejects invalid configs",
		func(cfg sim.Config) {
			_, err := sim.New(u).Run(context.Background(), cfg)
			Expect(err).To(HaveOccurred())
		},
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
		Entry("negative duration", sim.Config{Dt: 0.1, Duration: -1}),
		Entry("negative sample interval", sim.Config{Dt: 0.1, Duration: 1, SampleEvery: -1}),
	)

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := sim.New(u).Run(ctx, sim.Config{Dt: 0.1, Duration: 1})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(Equal(0))
	})

	It("reports invalid state when validating", func() {
		bad := point(1, vmath.Vy, vmath.V(math.NaN(), 0, 0))
		u.Add(bad)

		res, err := sim.New(u).Run(context.Background(), sim.Config{Dt: 0.1, Duration: 1, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(1))
		Expect(res.Errors).To(HaveLen(1))
		Expect(errors.Is(res.Errors[0], sim.ErrInvalidState)).To(BeTrue())

		var se sim.SimError
		Expect(errors.As(res.Errors[0], &se)).To(BeTrue())
		Expect(se.Step).To(Equal(0))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent universes", func() {
		e := sim.NewEnsemble(3, func(run int) (*sim.Simulator, sim.Config, error) {
			u := sim.NewUniverse(false)
			u.Add(point(1, vmath.V0, vmath.Vx.Scale(float64(run))))
			return sim.New(u), sim.Config{Dt: 0.5, Duration: 1}, nil
		})

		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for run, res := range results {
			final := res.Samples[len(res.Samples)-1].Bodies[0]
			expectV(final.CM, vmath.Vx.Scale(float64(run)))
		}
	})

	It("returns a build error", func() {
		boom := errors.New("boom")
		e := sim.NewEnsemble(2, func(run int) (*sim.Simulator, sim.Config, error) {
			if run == 1 {
				return nil, sim.Config{}, boom
			}
			return sim.New(sim.NewUniverse(false)), sim.Config{Dt: 1, Duration: 1}, nil
		})

		_, err := e.Run(context.Background())
		Expect(err).To(MatchError(boom))
	})
})
