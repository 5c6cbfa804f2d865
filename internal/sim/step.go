package sim

import (
	"fmt"
	"time"

	"github.com/markusressel/motor2go/internal/actuators"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/controller"
	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/lines"
	"github.com/markusressel/motor2go/internal/telemetry"
)

type StepOptions struct {
	// overrides the configured PID gains
	Gains *configuration.PidConfig

	StepTime time.Duration
	Duration time.Duration
	Low      float64
	High     float64
}

func DefaultStepOptions(config configuration.Configuration) StepOptions {
	return StepOptions{
		StepTime: 500 * time.Millisecond,
		Duration: 5 * time.Second,
		Low:      config.Motor.StepLow,
		High:     config.Motor.StepHigh,
	}
}

type StepResult struct {
	Records            []telemetry.Record
	IllegalTransitions uint64
	Position           int64
}

// SimulateStep runs a step response of the configured control loop against
// the simulated motor in virtual time. Encoder counts pass through the same
// decoder and controller as in the daemon.
func SimulateStep(config configuration.Configuration, options StepOptions) (*StepResult, error) {
	if options.Gains != nil {
		config.ControlLoop.Pid = *options.Gains
	}
	config.Motor.InitialSetpoint = options.Low

	period := config.Motor.LoopPeriod()
	if period <= 0 {
		return nil, fmt.Errorf("invalid loop period: %v", period)
	}
	if config.Simulation.StepRate <= 0 {
		return nil, fmt.Errorf("invalid simulation step rate: %v", config.Simulation.StepRate)
	}

	loop, err := controller.NewControlLoop(config)
	if err != nil {
		return nil, err
	}

	memoryLines := lines.NewMemoryLines()
	actuator := actuators.NewMemoryActuator("simulation")
	rig := NewRig(config.Simulation, config.Motor.CountsPerRevolution, memoryLines, actuator)

	decoder := encoder.NewDecoder(memoryLines, config.Encoder.Policy)
	detach := decoder.Attach(memoryLines)
	defer detach()
	decoder.Begin()

	sink := &telemetry.MemorySink{}
	c := controller.NewMotorController(config.Motor, decoder, loop, actuator, sink)
	c.Start()

	start := time.Unix(0, 0).UTC()
	stepped := false
	for elapsed := time.Duration(0); elapsed < options.Duration; elapsed += period {
		if !stepped && elapsed >= options.StepTime {
			if err := c.SetSetpoint(options.High); err != nil {
				return nil, err
			}
			stepped = true
		}
		rig.AdvanceDuration(period)
		c.Tick(start.Add(elapsed+period), period.Seconds())
	}

	return &StepResult{
		Records:            sink.Records,
		IllegalTransitions: decoder.IllegalTransitions(),
		Position:           decoder.Position(),
	}, nil
}
