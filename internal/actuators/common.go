package actuators

import (
	"fmt"

	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/util"
)

const (
	MinCommand = 0.0
	MaxCommand = 1.0
)

type Actuator interface {
	GetId() string

	// SetCommand applies the given command (0..1), values outside of that range are clamped
	SetCommand(value float64) error
	// GetCommand returns the last applied command
	GetCommand() float64
}

// NewActuator creates the actuator for the configured backend
func NewActuator(config configuration.Configuration) (Actuator, error) {
	switch config.Backend {
	case configuration.BackendSimulation:
		return NewMemoryActuator("simulation"), nil
	case configuration.BackendHardware:
		return NewFileActuator("pwm", config.Hardware.PwmPath, config.Hardware.PwmResolutionBits), nil
	}
	return nil, fmt.Errorf("no matching actuator for backend: %s", config.Backend)
}

func clampCommand(value float64) float64 {
	if value != value {
		// NaN
		return MinCommand
	}
	return util.Coerce(value, MinCommand, MaxCommand)
}
