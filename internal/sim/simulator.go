package sim

import (
	"context"
	"fmt"
)

// Simulator runs a universe for a fixed duration, sampling free bodies and feeding
// metrics and observers.
type Simulator struct {
	universe  *Universe
	metrics   []Metric
	observers []Observer
}

func New(u *Universe) *Simulator {
	return &Simulator{
		universe:  u,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Universe() *Universe    { return s.universe }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Samples: make([]Sample, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	u := s.universe
	for _, m := range s.metrics {
		m.Reset()
		m.Observe(u)
	}
	result.Samples = append(result.Samples, Snapshot(u))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := u.Step(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, SimError{Time: u.Time(), Step: i, Message: err.Error(), Wrapped: err})
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(u)
		}
		for _, obs := range s.observers {
			obs.OnStep(u)
		}

		sample := i%every == every-1 || i == steps-1
		if !sample && !cfg.ValidateState {
			continue
		}
		snap := Snapshot(u)
		if cfg.ValidateState && !validSample(snap) {
			result.Errors = append(result.Errors, SimError{Time: u.Time(), Step: i, Message: "invalid state (NaN/Inf)", Wrapped: ErrInvalidState})
			break
		}
		if sample {
			result.Samples = append(result.Samples, snap)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	return nil
}

func validSample(s Sample) bool {
	for _, b := range s.Bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}
