package config

import (
	"maps"
	"slices"

	"github.com/san-kum/loft/internal/units"
)

var Presets = map[string]*Config{
	// Two bodies joined at rest. The aggregate has mass 8 and its center of mass at z=3.
	"static-pair": {
		Name: "static-pair", Dt: 0.1, Duration: 10, SampleEvery: 1, G: 0,
		Bodies: []BodyConfig{
			{Name: "a", Kind: KindPoint, Mass: 2, Inertia: Vec{1, 1, 1}, Position: Vec{0, 0, 6}, Orientation: Vec{0, units.Deg(90), 0}},
			{Name: "b", Kind: KindPoint, Mass: 6, Inertia: Vec{1, 1, 1}, Position: Vec{0, 0, 2}, Orientation: Vec{0, units.Deg(90), 0}},
		},
		Captures: []CaptureConfig{{Head: "a", Part: "b"}},
	},
	// A spinning pod drifts into a ship and is captured on contact.
	"docking": {
		Name: "docking", Dt: 0.05, Duration: 30, SampleEvery: 4, Collisions: true, G: 0,
		Bodies: []BodyConfig{
			{Name: "ship", Kind: KindSphere, Mass: 100, Radius: 2, Inertia: Vec{40, 40, 20}, Velocity: Vec{0.5, 0, 0}},
			{Name: "pod", Kind: KindSphere, Mass: 5, Radius: 1, Inertia: Vec{2, 2, 2}, Position: Vec{20, 1, 0}, Velocity: Vec{-1, 0, 0}, Omega: Vec{0, 0, 0.2}},
		},
	},
	// One lunar month of the Earth and Moon.
	"earth-moon": {
		Name: "earth-moon", Dt: units.Day(1) / 200, Duration: units.Day(units.MoonPeriod), SampleEvery: 20, G: units.G,
		Bodies: []BodyConfig{
			{Name: "earth", Kind: KindWorld, Mass: units.EarthMass, Radius: units.EarthRadius, Period: units.Day(1), Orientation: Vec{0, units.Deg(units.EarthTilt), 0}},
			{Name: "moon", Kind: KindWorld, Mass: units.MoonMass, Radius: units.MoonRadius, Period: units.Day(units.MoonPeriod), Position: Vec{units.MoonDistance, 0, 0}, Velocity: Vec{0, units.MoonSpeed, 0}},
		},
	},
	// A rocket lifts off from the Earth's surface at full throttle.
	"launch": {
		Name: "launch", Dt: 0.1, Duration: 120, SampleEvery: 10, Collisions: true, G: units.G,
		Bodies: []BodyConfig{
			{Name: "earth", Kind: KindWorld, Mass: units.EarthMass, Radius: units.EarthRadius, Period: units.Day(1)},
			{
				Name: "rocket", Kind: KindRocket, Radius: 0.5,
				On: &SurfaceConfig{World: "earth", Lat: 28.5, Lon: -80.6, Alt: 10},
				Rocket: &RocketConfig{
					ShellMass: 10, EngineMass: 50, Length: 10,
					FuelDensity: 1.5, SpecificImpulse: 2e4, FuelRate: 0.05, Throttle: 1,
				},
			},
		},
	},
	// The launch rocket under an autopilot holding a 50 m/s climb.
	"launch-hold": {
		Name: "launch-hold", Dt: 0.1, Duration: 120, SampleEvery: 10, Collisions: true, G: units.G,
		Bodies: []BodyConfig{
			{Name: "earth", Kind: KindWorld, Mass: units.EarthMass, Radius: units.EarthRadius, Period: units.Day(1)},
			{
				Name: "rocket", Kind: KindRocket, Radius: 0.5,
				On: &SurfaceConfig{World: "earth", Lat: 28.5, Lon: -80.6, Alt: 10},
				Rocket: &RocketConfig{
					ShellMass: 10, EngineMass: 50, Length: 10,
					FuelDensity: 1.5, SpecificImpulse: 2e4, FuelRate: 0.05,
					Hold: &HoldConfig{World: "earth", Speed: 50, Kp: 0.05, Ki: 0.005},
				},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Bodies = slices.Clone(p.Bodies)
	cfg.Captures = slices.Clone(p.Captures)
	return &cfg
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
