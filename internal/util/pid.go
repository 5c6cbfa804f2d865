package util

type PidLoop struct {
	// Proportional Constant
	p float64
	// Integral Constant
	i float64
	// Derivative Constant
	d float64
	// Minimum output value
	outMin float64
	// Maximum output value
	outMax float64

	// last measured value
	lastMeasured float64
	// sum of error * dt over all previous loops, i.e. integral error
	integral float64
}

func NewPidLoop(p, i, d, min, max float64) *PidLoop {
	return &PidLoop{
		p:      p,
		i:      i,
		d:      d,
		outMin: min,
		outMax: max,
	}
}

// Loop advances the pid loop by dt seconds and returns the clamped output.
// A non-positive dt returns 0 and leaves the loop state untouched.
func (p *PidLoop) Loop(target float64, measured float64, dt float64) float64 {
	if !(dt > 0) {
		return 0
	}

	err := target - measured

	// --- P Term ---
	proportionalTerm := p.p * err

	// --- I Term ---
	p.integral += err * dt
	integralTerm := p.i * p.integral

	// --- D Term (on measurement) ---
	// avoid derivative kick
	derivativeRaw := (measured - p.lastMeasured) / dt
	derivativeTerm := -p.d * derivativeRaw // Note the minus sign

	// --- Combine Terms ---
	output := proportionalTerm + integralTerm + derivativeTerm

	// --- Clamp Output ---
	// undo the integration step that drove the output into saturation
	if output > p.outMax {
		output = p.outMax
		p.integral -= err * dt
	} else if output < p.outMin {
		output = p.outMin
		p.integral -= err * dt
	}

	p.lastMeasured = measured

	return output
}

// Reset clears the integral and derivative history, gains and limits are kept
func (p *PidLoop) Reset() {
	p.integral = 0
	p.lastMeasured = 0
}

func (p *PidLoop) SetGains(kp, ki, kd float64) {
	p.p = kp
	p.i = ki
	p.d = kd
}

func (p *PidLoop) Gains() (kp, ki, kd float64) {
	return p.p, p.i, p.d
}

func (p *PidLoop) SetOutputLimits(min, max float64) {
	p.outMin = min
	p.outMax = max
}

func (p *PidLoop) OutputLimits() (min, max float64) {
	return p.outMin, p.outMax
}

func (p *PidLoop) Integral() float64 {
	return p.integral
}
