package configuration

import "time"

type MotorConfig struct {
	// rate of the control loop
	LoopHz float64 `json:"loopHz" yaml:"loopHz"`
	// encoder counts per shaft revolution, after quadrature decoding
	CountsPerRevolution float64 `json:"countsPerRevolution" yaml:"countsPerRevolution"`
	// setpoints below this value are considered idle
	IdleThreshold float64 `json:"idleThreshold" yaml:"idleThreshold"`
	// setpoints used when toggling
	StepHigh float64 `json:"stepHigh" yaml:"stepHigh"`
	StepLow  float64 `json:"stepLow" yaml:"stepLow"`

	InitialSetpoint float64 `json:"initialSetpoint" yaml:"initialSetpoint"`
}

// MaxTransitionRate returns the number of encoder transitions per second
// at the highest setpoint the motor is driven to
func (c MotorConfig) MaxTransitionRate() float64 {
	return c.CountsPerRevolution * max(c.StepHigh, c.StepLow, c.InitialSetpoint) / 60
}

// LoopPeriod returns the target period of a single control tick
func (c MotorConfig) LoopPeriod() time.Duration {
	if c.LoopHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.LoopHz)
}

const (
	ControlLoopTypePid    = "pid"
	ControlLoopTypeDirect = "direct"
)

type ControlLoopConfig struct {
	// one of: pid | direct
	Type   string           `json:"type" yaml:"type"`
	Pid    PidConfig        `json:"pid" yaml:"pid"`
	Direct DirectLoopConfig `json:"direct" yaml:"direct"`
}

type PidConfig struct {
	P float64 `json:"p" yaml:"p"`
	I float64 `json:"i" yaml:"i"`
	D float64 `json:"d" yaml:"d"`
}

type DirectLoopConfig struct {
	// rate reached at a command of 1.0
	MaxRpm float64 `json:"maxRpm" yaml:"maxRpm"`
	// 0 disables the limit
	MaxChangePerSecond float64 `json:"maxChangePerSecond" yaml:"maxChangePerSecond"`
}

type OutputLimitsConfig struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

const (
	// EdgeDetectionInterrupt waits for kernel edge events on the gpio value files
	EdgeDetectionInterrupt = "interrupt"
	// EdgeDetectionPoll reads the gpio value files at linePollingRate
	EdgeDetectionPoll = "poll"
)

type HardwareConfig struct {
	// sysfs gpio value files of the encoder lines
	EncoderA string `json:"encoderA" yaml:"encoderA"`
	EncoderB string `json:"encoderB" yaml:"encoderB"`
	// one of: interrupt | poll
	EdgeDetection string `json:"edgeDetection" yaml:"edgeDetection"`
	// only used with edgeDetection: poll
	LinePollingRate time.Duration `json:"linePollingRate" yaml:"linePollingRate"`

	// file receiving the raw duty cycle
	PwmPath           string `json:"pwmPath" yaml:"pwmPath"`
	PwmResolutionBits int    `json:"pwmResolutionBits" yaml:"pwmResolutionBits"`
}

type SimulationConfig struct {
	// time constant of the first order motor model, in seconds
	TimeConstant float64 `json:"timeConstant" yaml:"timeConstant"`
	// free running speed at a command of 1.0
	MaxRpm   float64       `json:"maxRpm" yaml:"maxRpm"`
	StepRate time.Duration `json:"stepRate" yaml:"stepRate"`
}
