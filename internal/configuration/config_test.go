package configuration

import (
	"strings"
	"testing"
	"time"

	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYaml(t *testing.T, content string) {
	viper.Reset()
	setDefaultValues()
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(content)))
	require.NoError(t, LoadConfig())
}

func TestLoadConfig_Defaults(t *testing.T) {
	// WHEN
	loadYaml(t, "")

	// THEN
	assert.Equal(t, BackendSimulation, CurrentConfig.Backend)
	assert.Equal(t, 200.0, CurrentConfig.Motor.LoopHz)
	assert.Equal(t, 1024.0, CurrentConfig.Motor.CountsPerRevolution)
	assert.Equal(t, 0.005, CurrentConfig.ControlLoop.Pid.P)
	assert.Equal(t, 0.03, CurrentConfig.ControlLoop.Pid.I)
	assert.Equal(t, 1.0, CurrentConfig.OutputLimits.Max)
	assert.Equal(t, encoder.PolicyLenient, CurrentConfig.Encoder.Policy)
	assert.Equal(t, time.Millisecond, CurrentConfig.Simulation.StepRate)
	assert.Equal(t, EdgeDetectionInterrupt, CurrentConfig.Hardware.EdgeDetection)
	assert.Equal(t, 10*time.Microsecond, CurrentConfig.Hardware.LinePollingRate)
	assert.NoError(t, Validate())
}

func TestLoadConfig_Yaml(t *testing.T) {
	// WHEN
	loadYaml(t, `
backend: hardware
motor:
  loopHz: 500
  countsPerRevolution: 2048
encoder:
  policy: Strict
hardware:
  encoderA: /sys/class/gpio/gpio34/value
  encoderB: /sys/class/gpio/gpio35/value
  linePollingRate: 50us
  pwmPath: /sys/class/pwm/pwmchip0/pwm0/duty_cycle
controlLoop:
  pid:
    p: 0.01
    i: 0.1
    d: 0.001
`)

	// THEN
	assert.Equal(t, BackendHardware, CurrentConfig.Backend)
	assert.Equal(t, 500.0, CurrentConfig.Motor.LoopHz)
	assert.Equal(t, 2*time.Millisecond, CurrentConfig.Motor.LoopPeriod())
	assert.Equal(t, encoder.PolicyStrict, CurrentConfig.Encoder.Policy)
	assert.Equal(t, 50*time.Microsecond, CurrentConfig.Hardware.LinePollingRate)
	assert.Equal(t, 12, CurrentConfig.Hardware.PwmResolutionBits)
	assert.Equal(t, PidConfig{P: 0.01, I: 0.1, D: 0.001}, CurrentConfig.ControlLoop.Pid)
	assert.NoError(t, Validate())
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	// GIVEN
	viper.Reset()
	setDefaultValues()
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader("encoder:\n  policy: paranoid\n")))

	// WHEN
	err := LoadConfig()

	// THEN
	assert.Error(t, err)
}

func TestMotorConfig_LoopPeriod(t *testing.T) {
	assert.Equal(t, 5*time.Millisecond, MotorConfig{LoopHz: 200}.LoopPeriod())
	assert.Equal(t, time.Duration(0), MotorConfig{LoopHz: 0}.LoopPeriod())
}
