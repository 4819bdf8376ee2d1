package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/loft/internal/control"
	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/physics"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/units"
	"github.com/san-kum/loft/internal/vmath"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultSampleEvery = 1
)

// Body kinds.
const (
	KindPoint  = "point"
	KindSphere = "sphere"
	KindWorld  = "world"
	KindRocket = "rocket"
)

var ErrInvalidConfig = errors.New("config: invalid scenario")

// Vec is a vector written as [x, y, z].
type Vec [3]float64

func (v Vec) V3() vmath.V3 { return vmath.V(v[0], v[1], v[2]) }

type Config struct {
	Name        string          `yaml:"name"`
	Dt          float64         `yaml:"dt"`
	Duration    float64         `yaml:"duration"`
	SampleEvery int             `yaml:"sample_every"`
	Collisions  bool            `yaml:"collisions"`
	G           float64         `yaml:"g"`
	Bodies      []BodyConfig    `yaml:"bodies"`
	Captures    []CaptureConfig `yaml:"captures,omitempty"`
}

// BodyConfig describes one body. Orientation is a rotation vector: the body is turned
// by |orientation| radians about its direction. Inertia is the diagonal of the
// inertia tensor.
type BodyConfig struct {
	Name        string         `yaml:"name"`
	Kind        string         `yaml:"kind"`
	Mass        float64        `yaml:"mass"`
	Inertia     Vec            `yaml:"inertia,flow"`
	Position    Vec            `yaml:"position,flow"`
	Velocity    Vec            `yaml:"velocity,flow"`
	Orientation Vec            `yaml:"orientation,flow"`
	Omega       Vec            `yaml:"omega,flow"`
	Radius      float64        `yaml:"radius,omitempty"`
	Period      float64        `yaml:"period,omitempty"`
	Rocket      *RocketConfig  `yaml:"rocket,omitempty"`
	On          *SurfaceConfig `yaml:"on,omitempty"`
}

// RocketConfig holds the rocket-only parameters. The rocket's radius is the body's.
type RocketConfig struct {
	ShellMass       float64     `yaml:"shell_mass"`
	EngineMass      float64     `yaml:"engine_mass"`
	Length          float64     `yaml:"length"`
	FuelDensity     float64     `yaml:"fuel_density"`
	SpecificImpulse float64     `yaml:"specific_impulse"`
	FuelRate        float64     `yaml:"fuel_rate"`
	Throttle        float64     `yaml:"throttle"`
	Thrust          Vec         `yaml:"thrust,flow"`
	Hold            *HoldConfig `yaml:"hold,omitempty"`
}

// HoldConfig puts a rocket under an autopilot that throttles it to climb away from a
// world at a fixed speed.
type HoldConfig struct {
	World string  `yaml:"world"`
	Speed float64 `yaml:"speed"`
	Kp    float64 `yaml:"kp"`
	Ki    float64 `yaml:"ki"`
	Kd    float64 `yaml:"kd"`
}

// SurfaceConfig places a body on a world defined earlier in the list. Angles are in
// degrees. The body's position and orientation are replaced by the surface frame and
// it moves with the surface.
type SurfaceConfig struct {
	World string  `yaml:"world"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
	Alt   float64 `yaml:"alt"`
}

type CaptureConfig struct {
	Head string `yaml:"head"`
	Part string `yaml:"part"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		G:           units.G,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the scenario without building it.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return invalid("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return invalid("duration must be positive, got %g", c.Duration)
	}
	if c.SampleEvery < 0 {
		return invalid("sample_every must not be negative, got %d", c.SampleEvery)
	}
	if len(c.Bodies) == 0 {
		return invalid("no bodies")
	}

	kinds := make(map[string]string, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return invalid("body %d has no name", i)
		}
		if _, dup := kinds[b.Name]; dup {
			return invalid("duplicate body %q", b.Name)
		}
		if err := b.validate(); err != nil {
			return invalid("body %q: %v", b.Name, err)
		}
		if b.On != nil && kinds[b.On.World] != KindWorld {
			return invalid("body %q: %q is not a world defined before it", b.Name, b.On.World)
		}
		if b.Rocket != nil && b.Rocket.Hold != nil && kinds[b.Rocket.Hold.World] != KindWorld {
			return invalid("body %q: hold %q is not a world defined before it", b.Name, b.Rocket.Hold.World)
		}
		kinds[b.Name] = b.Kind
	}

	for _, cp := range c.Captures {
		for _, name := range []string{cp.Head, cp.Part} {
			if _, ok := kinds[name]; !ok {
				return invalid("capture: unknown body %q", name)
			}
		}
	}
	return nil
}

func (b *BodyConfig) validate() error {
	if b.Mass < 0 {
		return fmt.Errorf("negative mass %g", b.Mass)
	}
	switch b.Kind {
	case KindPoint:
	case KindSphere:
		if b.Radius <= 0 {
			return fmt.Errorf("sphere needs a positive radius")
		}
	case KindWorld:
		if b.Radius <= 0 || b.Mass <= 0 {
			return fmt.Errorf("world needs a positive mass and radius")
		}
		if b.Period == 0 {
			return fmt.Errorf("world needs a nonzero period")
		}
	case KindRocket:
		r := b.Rocket
		if r == nil {
			return fmt.Errorf("rocket section missing")
		}
		if b.Radius <= 0 || r.Length <= 0 || r.ShellMass <= 0 || r.EngineMass <= 0 {
			return fmt.Errorf("rocket needs positive radius, length, shell and engine mass")
		}
		if r.FuelDensity < 0 || r.FuelRate < 0 || r.SpecificImpulse < 0 {
			return fmt.Errorf("rocket fuel parameters must not be negative")
		}
	default:
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	return nil
}

// Scenario is a built universe with its bodies indexed by name.
type Scenario struct {
	Name     string
	Universe *sim.Universe
	Bodies   map[string]*dynamo.Body
	Worlds   map[string]*physics.World
	Rockets  map[string]*physics.Rocket
	Sim      sim.Config
}

// Build validates the config and constructs its universe. Bodies are added in order;
// captures are applied after all bodies exist.
func (c *Config) Build(opts ...sim.Option) (*Scenario, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts = append([]sim.Option{sim.WithGravitationalConstant(c.G)}, opts...)
	s := &Scenario{
		Name:     c.Name,
		Universe: sim.NewUniverse(c.Collisions, opts...),
		Bodies:   make(map[string]*dynamo.Body, len(c.Bodies)),
		Worlds:   make(map[string]*physics.World),
		Rockets:  make(map[string]*physics.Rocket),
		Sim:      c.SimConfig(),
	}

	for _, bc := range c.Bodies {
		b := s.build(bc)
		b.SetName(bc.Name)
		s.Bodies[bc.Name] = b
		s.Universe.Add(b)
	}

	for _, cp := range c.Captures {
		if err := s.Bodies[cp.Head].Capture(s.Bodies[cp.Part]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return s, nil
}

func (s *Scenario) build(bc BodyConfig) *dynamo.Body {
	r, v := bc.Position.V3(), bc.Velocity.V3()
	o := vmath.Rot(vmath.M1, bc.Orientation.V3())
	if bc.On != nil {
		w := s.Worlds[bc.On.World]
		var frame vmath.M3
		r, frame = w.Locate(units.Deg(bc.On.Lat), units.Deg(bc.On.Lon), bc.On.Alt)
		o = frame.Mul(o)
		v = v.Add(surfaceVelocity(w, r))
	}

	switch bc.Kind {
	case KindWorld:
		w := physics.NewWorld(bc.Mass, bc.Radius, r, v, o, bc.Period)
		s.Worlds[bc.Name] = w
		return w.Body
	case KindRocket:
		rc := bc.Rocket
		rocket := physics.NewRocket(physics.RocketSpec{
			ShellMass:       rc.ShellMass,
			EngineMass:      rc.EngineMass,
			Radius:          bc.Radius,
			Length:          rc.Length,
			FuelDensity:     rc.FuelDensity,
			SpecificImpulse: rc.SpecificImpulse,
			FuelRate:        rc.FuelRate,
		}, r, o)
		rocket.Throttle(rc.Throttle)
		rocket.OrientThrust(rc.Thrust.V3())
		rocket.Impulse(v.Scale(rocket.Mass()))
		if h := rc.Hold; h != nil {
			rocket.SetPilot(control.NewClimbHold(s.Worlds[h.World], h.Speed, control.NewPID(h.Kp, h.Ki, h.Kd)))
		}
		s.Rockets[bc.Name] = rocket
		return rocket.Body
	}

	i := bc.Inertia
	b := dynamo.New(bc.Mass, vmath.Diag(i[0], i[1], i[2]), r, v, o, bc.Omega.V3())
	if bc.Kind == KindSphere {
		b.SetShape(dynamo.Sphere{Radius: bc.Radius})
	}
	return b
}

// surfaceVelocity is the absolute velocity of a point at r fixed to w's surface.
func surfaceVelocity(w *physics.World, r vmath.V3) vmath.V3 {
	return w.VelocityOfCM().Add(w.AngularVelocity().Cross(r.Sub(w.CenterOfMass())))
}
