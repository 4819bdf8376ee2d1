package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/loft/internal/vmath"
)

// ErrInvalidState indicates a free body whose motion has become NaN or Inf.
var ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

// Metric accumulates a scalar over a run. Observe is called once before the first
// step and once after every step.
type Metric interface {
	Name() string
	Observe(u *Universe)
	Value() float64
	Reset()
}

// Observer is notified after every step.
type Observer interface {
	OnStep(u *Universe)
}

type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int
	ValidateState bool
}

// BodyState is the absolute motion of a free aggregate at one instant.
type BodyState struct {
	Name     string
	Mass     float64
	CM       vmath.V3
	Velocity vmath.V3
	Omega    vmath.V3
}

func (s BodyState) IsValid() bool {
	return s.CM.IsValid() && s.Velocity.IsValid() && s.Omega.IsValid()
}

type Sample struct {
	Time   float64
	Bodies []BodyState
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }

// Snapshot records the state of every free body in u, in the order they were added.
func Snapshot(u *Universe) Sample {
	free := u.Free()
	s := Sample{Time: u.Time(), Bodies: make([]BodyState, 0, len(free))}
	for _, b := range free {
		s.Bodies = append(s.Bodies, BodyState{
			Name:     b.Name(),
			Mass:     b.Mass(),
			CM:       b.CenterOfMass(),
			Velocity: b.VelocityOfCM(),
			Omega:    b.AngularVelocity(),
		})
	}
	return s
}
