package sim

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/units"
	"github.com/san-kum/loft/internal/vmath"
)

// DefaultMinSeparation is the distance below which two bodies exert no gravity on
// each other.
const DefaultMinSeparation = 1e-9

// Universe advances a set of bodies under mutual gravity, capturing bodies that
// collide while approaching each other.
type Universe struct {
	bodies     []*dynamo.Body
	time       float64
	collisions bool

	g             float64
	minSeparation float64
	logger        *zap.Logger
}

type Option func(*Universe)

func WithLogger(l *zap.Logger) Option {
	return func(u *Universe) { u.logger = l }
}

func WithGravitationalConstant(g float64) Option {
	return func(u *Universe) { u.g = g }
}

func WithMinSeparation(d float64) Option {
	return func(u *Universe) { u.minSeparation = d }
}

func NewUniverse(collisions bool, opts ...Option) *Universe {
	u := &Universe{
		collisions:    collisions,
		g:             units.G,
		minSeparation: DefaultMinSeparation,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Add appends b to the universe. Adding a body twice has no effect.
func (u *Universe) Add(b *dynamo.Body) {
	if slices.Contains(u.bodies, b) {
		return
	}
	u.bodies = append(u.bodies, b)
}

func (u *Universe) Time() float64                  { return u.time }
func (u *Universe) Collisions() bool               { return u.collisions }
func (u *Universe) GravitationalConstant() float64 { return u.g }
func (u *Universe) Bodies() []*dynamo.Body         { return slices.Clone(u.bodies) }

// Free returns the added bodies that are currently free.
func (u *Universe) Free() []*dynamo.Body {
	var free []*dynamo.Body
	for _, b := range u.bodies {
		if b.IsFree() {
			free = append(free, b)
		}
	}
	return free
}

// Step advances the universe by dt: gravity impulses, then motion, then the clock,
// then collisions. The order is fixed; changing it changes trajectories.
func (u *Universe) Step(dt float64) error {
	for i, p1 := range u.bodies {
		if !p1.IsFree() {
			continue
		}
		for _, p2 := range u.bodies[i+1:] {
			if !p2.IsFree() {
				continue
			}
			m1, m2 := p1.Mass(), p2.Mass()
			// Pairs of equal mass are skipped.
			if m1 == m2 || m1 == 0 || m2 == 0 {
				continue
			}
			imp := u.gravity(p1, p2).Scale(dt)
			p1.Impulse(imp)
			p2.Impulse(imp.Neg())
		}
	}

	// Captured bodies are stepped through their root.
	for _, b := range u.bodies {
		if b.IsFree() {
			b.Step(dt)
		}
	}

	u.time += dt

	if u.collisions {
		return u.collide()
	}
	return nil
}

// gravity returns the force on p1 due to p2.
func (u *Universe) gravity(p1, p2 *dynamo.Body) vmath.V3 {
	r := p2.CenterOfMass().Sub(p1.CenterOfMass())
	d2 := r.Square()
	if math.Sqrt(d2) < u.minSeparation {
		return vmath.V0
	}
	return r.Unit().Scale(u.g * p1.Mass() * p2.Mass() / d2)
}

func (u *Universe) collide() error {
	for i, p1 := range u.bodies {
		if !p1.IsFree() {
			continue
		}
		for _, p2 := range u.bodies[i+1:] {
			// p2 may have been captured earlier in this pass.
			if !p2.IsFree() {
				continue
			}
			if !p1.Intersects(p2) || p1.VelocityOfCM().Dot(p2.VelocityOfCM()) >= 0 {
				continue
			}
			if err := p1.Capture(p2); err != nil {
				return fmt.Errorf("collision at t=%g: %w", u.time, err)
			}
			u.logger.Debug("collision capture",
				zap.String("head", p1.Name()),
				zap.String("part", p2.Name()),
				zap.Float64("t", u.time),
				zap.Float64("mass", p1.Mass()),
			)
		}
	}
	return nil
}
