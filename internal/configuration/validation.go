package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markusressel/motor2go/internal/ui"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	supportedBackends := []string{BackendSimulation, BackendHardware}
	if !slices.Contains(supportedBackends, config.Backend) {
		return fmt.Errorf("unsupported backend '%s', use one of: %s", config.Backend, strings.Join(supportedBackends, " | "))
	}

	err := validateMotor(config)
	if err != nil {
		return err
	}
	err = validateControlLoop(config)
	if err != nil {
		return err
	}

	switch config.Backend {
	case BackendHardware:
		err = validateHardware(config)
	case BackendSimulation:
		err = validateSimulation(config)
	}
	if err != nil {
		return err
	}

	err = validateTelemetry(config)
	if err != nil {
		return err
	}
	return validateServices(config)
}

func validateMotor(config *Configuration) error {
	motor := config.Motor
	if motor.LoopHz <= 0 {
		return errors.New("motor: loopHz must be > 0")
	}
	if motor.CountsPerRevolution <= 0 {
		return errors.New("motor: countsPerRevolution must be > 0")
	}
	if motor.IdleThreshold < 0 {
		return errors.New("motor: idleThreshold must be >= 0")
	}
	if motor.StepHigh < motor.IdleThreshold {
		ui.Warning("motor: stepHigh (%.2f) is below idleThreshold (%.2f), toggling will never leave idle", motor.StepHigh, motor.IdleThreshold)
	}
	return nil
}

func validateControlLoop(config *Configuration) error {
	limits := config.OutputLimits
	if limits.Min >= limits.Max {
		return fmt.Errorf("outputLimits: min (%v) must be smaller than max (%v)", limits.Min, limits.Max)
	}
	if limits.Min < 0 || limits.Max > 1 {
		return fmt.Errorf("outputLimits: limits must be within [0, 1], got [%v, %v]", limits.Min, limits.Max)
	}

	loop := config.ControlLoop
	switch loop.Type {
	case ControlLoopTypePid:
		pid := loop.Pid
		if pid.P == 0 && pid.I == 0 && pid.D == 0 {
			return errors.New("controlLoop: all PID constants are zero")
		}
		if pid.P < 0 || pid.I < 0 || pid.D < 0 {
			return errors.New("controlLoop: PID constants must not be negative")
		}
	case ControlLoopTypeDirect:
		if loop.Direct.MaxRpm <= 0 {
			return errors.New("controlLoop: direct.maxRpm must be > 0")
		}
		if loop.Direct.MaxChangePerSecond < 0 {
			return errors.New("controlLoop: direct.maxChangePerSecond must be >= 0")
		}
	default:
		return fmt.Errorf("controlLoop: unsupported type '%s', use one of: %s | %s", loop.Type, ControlLoopTypePid, ControlLoopTypeDirect)
	}
	return nil
}

func validateHardware(config *Configuration) error {
	hardware := config.Hardware
	if len(hardware.EncoderA) <= 0 || len(hardware.EncoderB) <= 0 {
		return errors.New("hardware: encoderA and encoderB are required")
	}
	if hardware.EncoderA == hardware.EncoderB {
		return errors.New("hardware: encoderA and encoderB must be different lines")
	}
	if len(hardware.PwmPath) <= 0 {
		return errors.New("hardware: pwmPath is required")
	}
	if hardware.PwmResolutionBits < 1 || hardware.PwmResolutionBits > 31 {
		return fmt.Errorf("hardware: pwmResolutionBits must be within [1, 31], got %d", hardware.PwmResolutionBits)
	}

	switch hardware.EdgeDetection {
	case EdgeDetectionInterrupt:
	case EdgeDetectionPoll:
		if hardware.LinePollingRate <= 0 {
			return errors.New("hardware: linePollingRate must be > 0")
		}
		// every transition has to be seen by at least one poll,
		// otherwise two phase jumps are decoded as reverse steps
		transitionRate := config.Motor.MaxTransitionRate()
		if transitionRate > 0 {
			interval := time.Duration(float64(time.Second) / transitionRate)
			if hardware.LinePollingRate >= interval {
				return fmt.Errorf("hardware: linePollingRate %v is too slow for %.0f transitions/s, must be < %v or use edgeDetection '%s'",
					hardware.LinePollingRate, transitionRate, interval, EdgeDetectionInterrupt)
			}
		}
	default:
		return fmt.Errorf("hardware: unsupported edgeDetection '%s', use one of: %s | %s", hardware.EdgeDetection, EdgeDetectionInterrupt, EdgeDetectionPoll)
	}
	return nil
}

func validateSimulation(config *Configuration) error {
	simulation := config.Simulation
	if simulation.TimeConstant <= 0 {
		return errors.New("simulation: timeConstant must be > 0")
	}
	if simulation.MaxRpm <= 0 {
		return errors.New("simulation: maxRpm must be > 0")
	}
	if simulation.StepRate <= 0 {
		return errors.New("simulation: stepRate must be > 0")
	}
	return nil
}

func validateTelemetry(config *Configuration) error {
	telemetry := config.Telemetry
	if telemetry.Decimation < 1 {
		return errors.New("telemetry: decimation must be >= 1")
	}
	if telemetry.Store && telemetry.FlushSize < 1 {
		return errors.New("telemetry: flushSize must be >= 1")
	}
	if telemetry.Store && len(config.DbPath) <= 0 {
		return errors.New("telemetry: store requires a dbPath")
	}
	return nil
}

func validateServices(config *Configuration) error {
	if config.Serial.Enabled {
		if len(config.Serial.Port) <= 0 {
			return errors.New("serial: port is required")
		}
		if config.Serial.Baud <= 0 {
			return errors.New("serial: baud must be > 0")
		}
	}
	if config.Api.Enabled && !isValidPort(config.Api.Port) {
		return fmt.Errorf("api: invalid port %d", config.Api.Port)
	}
	if config.Statistics.Enabled && !isValidPort(config.Statistics.Port) {
		return fmt.Errorf("statistics: invalid port %d", config.Statistics.Port)
	}
	if config.Api.Enabled && config.Statistics.Enabled && config.Api.Port == config.Statistics.Port {
		return fmt.Errorf("api and statistics cannot share port %d", config.Api.Port)
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port < 65536
}
