package sim

// Motor is a first order model of a DC motor, whose speed follows
// maxRpm * duty with the given time constant.
type Motor struct {
	// seconds
	TimeConstant float64
	// speed reached at a duty of 1.0
	MaxRpm float64

	rpm float64
}

func NewMotor(timeConstant float64, maxRpm float64) *Motor {
	return &Motor{
		TimeConstant: timeConstant,
		MaxRpm:       maxRpm,
	}
}

// Step advances the model by dt seconds and returns the new speed
func (m *Motor) Step(duty float64, dt float64) float64 {
	if !(dt > 0) {
		return m.rpm
	}
	target := m.MaxRpm * duty
	alpha := dt / (m.TimeConstant + 1e-9)
	if alpha > 1 {
		alpha = 1
	}
	m.rpm += (target - m.rpm) * alpha
	return m.rpm
}

func (m *Motor) Rpm() float64 {
	return m.rpm
}
