package control_loop

type ControlLoop interface {
	// Loop advances the control loop by dt seconds and returns the new actuator command
	Loop(target float64, measured float64, dt float64) float64
	// Reset clears any history accumulated by previous Loop calls
	Reset()
}

// TunableControlLoop is a ControlLoop whose gains can be changed at runtime
type TunableControlLoop interface {
	ControlLoop
	SetGains(p, i, d float64)
	Gains() (p, i, d float64)
}
