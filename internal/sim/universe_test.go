package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/vmath"
)

const tol = 1e-12

func point(mass float64, r, v vmath.V3) *dynamo.Body {
	return dynamo.New(mass, vmath.M1, r, v, vmath.M1, vmath.V0)
}

func ball(name string, mass, radius float64, r, v vmath.V3) *dynamo.Body {
	b := point(mass, r, v)
	b.SetName(name)
	b.SetShape(dynamo.Sphere{Radius: radius})
	return b
}

func expectV(got, want vmath.V3) {
	GinkgoHelper()
	Expect(got.X).To(BeNumerically("~", want.X, tol))
	Expect(got.Y).To(BeNumerically("~", want.Y, tol))
	Expect(got.Z).To(BeNumerically("~", want.Z, tol))
}

type countingDriver struct{ calls int }

func (d *countingDriver) Drive(*dynamo.Body, float64) { d.calls++ }

var _ = Describe("Universe", func() {
	Describe("gravity", func() {
		It("pulls unequal masses together with equal and opposite impulses", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(1))
			p1 := point(1, vmath.V0, vmath.V0)
			p2 := point(2, vmath.Vx.Scale(2), vmath.V0)
			u.Add(p1)
			u.Add(p2)

			Expect(u.Step(0.1)).To(Succeed())

			// F = G*1*2/2² = 0.5 along x.
			expectV(p1.VelocityOfCM(), vmath.Vx.Scale(0.05))
			expectV(p2.VelocityOfCM(), vmath.Vx.Scale(-0.025))
			expectV(p1.CenterOfMass(), vmath.Vx.Scale(0.005))
			expectV(p2.CenterOfMass(), vmath.Vx.Scale(2-0.0025))
			Expect(u.Time()).To(BeNumerically("~", 0.1, tol))
		})

		It("skips pairs of equal mass", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(1))
			p1 := point(5, vmath.V0, vmath.V0)
			p2 := point(5, vmath.Vx, vmath.V0)
			u.Add(p1)
			u.Add(p2)

			Expect(u.Step(1)).To(Succeed())

			Expect(p1.VelocityOfCM()).To(Equal(vmath.V0))
			Expect(p2.VelocityOfCM()).To(Equal(vmath.V0))
		})

		It("exerts no force between coincident bodies", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(1))
			p1 := point(1, vmath.Vy, vmath.V0)
			p2 := point(2, vmath.Vy, vmath.V0)
			u.Add(p1)
			u.Add(p2)

			Expect(u.Step(1)).To(Succeed())

			Expect(p1.VelocityOfCM()).To(Equal(vmath.V0))
			Expect(p2.VelocityOfCM()).To(Equal(vmath.V0))
		})

		It("honors a custom minimum separation", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(1), sim.WithMinSeparation(10))
			p1 := point(1, vmath.V0, vmath.V0)
			p2 := point(2, vmath.Vx.Scale(2), vmath.V0)
			u.Add(p1)
			u.Add(p2)

			Expect(u.Step(1)).To(Succeed())
			Expect(p1.VelocityOfCM()).To(Equal(vmath.V0))
		})

		It("ignores captured bodies", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(1))
			p1 := point(1, vmath.V0, vmath.V0)
			p2 := point(2, vmath.Vx.Scale(2), vmath.V0)
			Expect(p1.Capture(p2)).To(Succeed())
			u.Add(p1)
			u.Add(p2)

			Expect(u.Step(1)).To(Succeed())
			Expect(p1.VelocityOfCM()).To(Equal(vmath.V0))
			Expect(u.Free()).To(ConsistOf(p1))
		})
	})

	Describe("bodies", func() {
		It("adds each body once", func() {
			u := sim.NewUniverse(false)
			b := point(1, vmath.V0, vmath.V0)
			u.Add(b)
			u.Add(b)
			Expect(u.Bodies()).To(HaveLen(1))
			Expect(u.GravitationalConstant()).To(Equal(6.674e-11))
		})

		It("steps captured bodies only through their root", func() {
			u := sim.NewUniverse(false)
			head := point(1, vmath.V0, vmath.V0)
			part := point(2, vmath.Vx, vmath.V0)
			d := &countingDriver{}
			part.SetDriver(d)
			Expect(head.Capture(part)).To(Succeed())
			u.Add(head)
			u.Add(part)

			Expect(u.Step(0.5)).To(Succeed())
			Expect(u.Step(0.5)).To(Succeed())
			Expect(d.calls).To(Equal(2))
			Expect(u.Time()).To(Equal(1.0))
		})
	})

	Describe("collisions", func() {
		var (
			a, b *dynamo.Body
		)

		BeforeEach(func() {
			a = ball("a", 1, 1, vmath.Vx.Scale(-0.5), vmath.Vx)
			b = ball("b", 3, 1, vmath.Vx.Scale(0.5), vmath.Vx.Neg())
		})

		It("captures an approaching body on contact", func() {
			u := sim.NewUniverse(true, sim.WithGravitationalConstant(0))
			u.Add(a)
			u.Add(b)

			Expect(u.Step(0.1)).To(Succeed())

			Expect(b.IsFree()).To(BeFalse())
			Expect(b.Parent()).To(BeIdenticalTo(a))
			Expect(u.Free()).To(ConsistOf(a))
			Expect(a.Mass()).To(Equal(4.0))
			expectV(a.VelocityOfCM(), vmath.Vx.Scale(-0.5))
		})

		It("does nothing when collisions are disabled", func() {
			u := sim.NewUniverse(false, sim.WithGravitationalConstant(0))
			u.Add(a)
			u.Add(b)

			Expect(u.Step(0.1)).To(Succeed())
			Expect(u.Collisions()).To(BeFalse())
			Expect(u.Free()).To(HaveLen(2))
		})

		It("ignores overlapping bodies moving the same way", func() {
			u := sim.NewUniverse(true, sim.WithGravitationalConstant(0))
			c := ball("c", 3, 1, vmath.Vx.Scale(0.5), vmath.Vx.Scale(2))
			u.Add(a)
			u.Add(c)

			Expect(u.Step(0.1)).To(Succeed())
			Expect(u.Free()).To(HaveLen(2))
		})

		It("does not let a captured body capture later in the same pass", func() {
			u := sim.NewUniverse(true, sim.WithGravitationalConstant(0))
			// c overlaps b but not the aggregate a forms with b.
			c := ball("c", 2, 0.6, vmath.Vx.Scale(2), vmath.Vx.Neg())
			u.Add(a)
			u.Add(b)
			u.Add(c)

			Expect(u.Step(0.1)).To(Succeed())
			Expect(b.Parent()).To(BeIdenticalTo(a))
			Expect(c.IsFree()).To(BeTrue())
			Expect(b.Subs()).To(BeEmpty())
		})

		It("logs captures at debug level", func() {
			core, logs := observer.New(zapcore.DebugLevel)
			u := sim.NewUniverse(true, sim.WithGravitationalConstant(0), sim.WithLogger(zap.New(core)))
			u.Add(a)
			u.Add(b)

			Expect(u.Step(0.1)).To(Succeed())

			entries := logs.FilterMessage("collision capture").All()
			Expect(entries).To(HaveLen(1))
			fields := entries[0].ContextMap()
			Expect(fields).To(HaveKeyWithValue("head", "a"))
			Expect(fields).To(HaveKeyWithValue("part", "b"))
		})
	})
})
