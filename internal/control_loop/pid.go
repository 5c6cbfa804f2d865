package control_loop

import (
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
)

type PidControlLoopDefaults struct {
	P float64
	I float64
	D float64
}

var (
	DefaultPidConfig = PidControlLoopDefaults{
		P: 0.005,
		I: 0.03,
		D: 0.0,
	}
)

// PidControlLoop is a PidLoop based control loop implementation.
type PidControlLoop struct {
	pidLoop *util.PidLoop
}

// NewPidControlLoop creates a PidControlLoop, which uses a PID loop to approach the target.
func NewPidControlLoop(
	p float64,
	i float64,
	d float64,
	outMin float64,
	outMax float64,
) *PidControlLoop {
	return &PidControlLoop{
		pidLoop: util.NewPidLoop(p, i, d, outMin, outMax),
	}
}

func (l *PidControlLoop) Loop(target float64, measured float64, dt float64) float64 {
	result := l.pidLoop.Loop(target, measured, dt)
	ui.Debug("PidControlLoop: target: %.2f, measured: %.2f, dt: %.4f, result: %.4f", target, measured, dt, result)
	return result
}

func (l *PidControlLoop) Reset() {
	l.pidLoop.Reset()
}

func (l *PidControlLoop) SetGains(p, i, d float64) {
	l.pidLoop.SetGains(p, i, d)
}

func (l *PidControlLoop) Gains() (p, i, d float64) {
	return l.pidLoop.Gains()
}

func (l *PidControlLoop) SetOutputLimits(min, max float64) {
	l.pidLoop.SetOutputLimits(min, max)
}

func (l *PidControlLoop) Integral() float64 {
	return l.pidLoop.Integral()
}
