package control_loop

import (
	"github.com/markusressel/motor2go/internal/util"
)

// DirectControlLoop is an open loop control that maps the target rate
// directly to a command, ignoring the measurement. It can also be used to
// gracefully approach the target by utilizing the "maxChangePerSecond" property.
type DirectControlLoop struct {
	// rate that is reached at a command of 1.0
	maxRate float64
	// limits the maximum allowed command change per second, <= 0 disables the limit
	maxChangePerSecond float64
	outMin             float64
	outMax             float64

	lastOutput float64
}

// NewDirectControlLoop creates a DirectControlLoop, which is a very simple control that directly applies the given
// target. It can also be used to gracefully approach the target by
// utilizing the "maxChangePerSecond" property.
func NewDirectControlLoop(
	maxRate float64,
	// can be used to limit the maximum allowed command change per second
	maxChangePerSecond float64,
	outMin float64,
	outMax float64,
) *DirectControlLoop {
	return &DirectControlLoop{
		maxRate:            maxRate,
		maxChangePerSecond: maxChangePerSecond,
		outMin:             outMin,
		outMax:             outMax,
	}
}

func (l *DirectControlLoop) Loop(target float64, measured float64, dt float64) float64 {
	if !(dt > 0) || !(l.maxRate > 0) {
		return 0
	}

	desired := util.Coerce(target/l.maxRate, l.outMin, l.outMax)

	output := desired
	if l.maxChangePerSecond > 0 {
		// we can be above or below the desired command,
		// so we subtract or add at most the max change,
		// capped to having reached the target
		maxChangeThisStep := l.maxChangePerSecond * dt
		output = l.lastOutput + util.Coerce(desired-l.lastOutput, -maxChangeThisStep, maxChangeThisStep)
	}
	output = util.Coerce(output, l.outMin, l.outMax)

	l.lastOutput = output
	return output
}

func (l *DirectControlLoop) Reset() {
	l.lastOutput = 0
}
