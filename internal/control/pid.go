package control

// PID is a scalar proportional-integral-derivative controller.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	integral float64
	prevErr  float64
	started  bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd}
}

// Update returns the control output for error err measured dt after the previous
// call. The first call has no derivative term; a non-positive dt gives the
// proportional term alone and leaves the state untouched.
func (p *PID) Update(err, dt float64) float64 {
	if dt <= 0 {
		return p.Kp * err
	}

	p.integral += err * dt
	u := p.Kp*err + p.Ki*p.integral
	if p.started {
		u += p.Kd * (err - p.prevErr) / dt
	}

	p.prevErr = err
	p.started = true
	return u
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.started = false
}
