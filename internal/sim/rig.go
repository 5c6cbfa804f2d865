package sim

import (
	"context"
	"sync"
	"time"

	"github.com/markusressel/motor2go/internal/actuators"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/lines"
	"github.com/markusressel/motor2go/internal/util"
)

// Rig connects a simulated motor to an actuator and a pair of encoder lines
type Rig struct {
	motor    *Motor
	emitter  *QuadratureEmitter
	actuator actuators.Actuator
	cpr      float64
	stepRate time.Duration

	mu sync.Mutex
}

func NewRig(
	config configuration.SimulationConfig,
	countsPerRevolution float64,
	lines *lines.MemoryLines,
	actuator actuators.Actuator,
) *Rig {
	return &Rig{
		motor:    NewMotor(config.TimeConstant, config.MaxRpm),
		emitter:  NewQuadratureEmitter(lines),
		actuator: actuator,
		cpr:      countsPerRevolution,
		stepRate: config.StepRate,
	}
}

// Advance moves the simulation forward by dt seconds, using the current actuator command
func (r *Rig) Advance(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rpm := r.motor.Step(r.actuator.GetCommand(), dt)
	r.emitter.Advance(util.RpmToCountsPerSecond(rpm, r.cpr) * dt)
}

// AdvanceDuration moves the simulation forward in steps of at most the configured step rate
func (r *Rig) AdvanceDuration(d time.Duration) {
	for remaining := d; remaining > 0; remaining -= r.stepRate {
		r.Advance(min(remaining, r.stepRate).Seconds())
	}
}

// Rpm returns the true speed of the simulated motor
func (r *Rig) Rpm() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motor.Rpm()
}

// Position returns the number of counts emitted so far
func (r *Rig) Position() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emitter.Emitted()
}

// Run advances the simulation in real time until ctx is cancelled
func (r *Rig) Run(ctx context.Context) error {
	tick := time.NewTicker(r.stepRate)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			r.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}
