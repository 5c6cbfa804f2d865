package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	BackendSimulation = "simulation"
	BackendHardware   = "hardware"
)

type Configuration struct {
	DbPath string `json:"dbPath" yaml:"dbPath"`

	// one of: simulation | hardware
	Backend string `json:"backend" yaml:"backend"`

	Motor        MotorConfig        `json:"motor" yaml:"motor"`
	ControlLoop  ControlLoopConfig  `json:"controlLoop" yaml:"controlLoop"`
	OutputLimits OutputLimitsConfig `json:"outputLimits" yaml:"outputLimits"`
	Encoder      EncoderConfig      `json:"encoder" yaml:"encoder"`

	Hardware   HardwareConfig   `json:"hardware" yaml:"hardware"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	Telemetry  TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	Serial     SerialConfig     `json:"serial" yaml:"serial"`
	Api        ApiConfig        `json:"api" yaml:"api"`
	Statistics StatisticsConfig `json:"statistics" yaml:"statistics"`
}

type EncoderConfig struct {
	// how transitions that skip a phase are counted
	Policy encoder.Policy `json:"policy" yaml:"policy"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("motor2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Warning("Couldn't detect home directory: %v", err)
		} else {
			viper.AddConfigPath(home)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/motor2go/")
	}

	viper.SetEnvPrefix("MOTOR2GO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbPath", "/var/lib/motor2go/motor2go.db")
	viper.SetDefault("backend", BackendSimulation)

	viper.SetDefault("motor.loopHz", 200.0)
	viper.SetDefault("motor.countsPerRevolution", 1024.0)
	viper.SetDefault("motor.idleThreshold", 1.0)
	viper.SetDefault("motor.stepHigh", 3000.0)
	viper.SetDefault("motor.stepLow", 0.0)
	viper.SetDefault("motor.initialSetpoint", 0.0)

	viper.SetDefault("controlLoop.type", ControlLoopTypePid)
	viper.SetDefault("controlLoop.pid.p", 0.005)
	viper.SetDefault("controlLoop.pid.i", 0.03)
	viper.SetDefault("controlLoop.pid.d", 0.0)
	viper.SetDefault("controlLoop.direct.maxRpm", 6000.0)
	viper.SetDefault("controlLoop.direct.maxChangePerSecond", 0.0)

	viper.SetDefault("outputLimits.min", 0.0)
	viper.SetDefault("outputLimits.max", 1.0)

	viper.SetDefault("encoder.policy", encoder.PolicyNameLenient)

	viper.SetDefault("hardware.edgeDetection", EdgeDetectionInterrupt)
	viper.SetDefault("hardware.linePollingRate", 10*time.Microsecond)
	viper.SetDefault("hardware.pwmResolutionBits", 12)

	viper.SetDefault("simulation.timeConstant", 0.05)
	viper.SetDefault("simulation.maxRpm", 6000.0)
	viper.SetDefault("simulation.stepRate", 1*time.Millisecond)

	viper.SetDefault("telemetry.csv", "")
	viper.SetDefault("telemetry.store", false)
	viper.SetDefault("telemetry.decimation", 1)
	viper.SetDefault("telemetry.flushSize", 200)

	viper.SetDefault("serial.enabled", false)
	viper.SetDefault("serial.baud", 115200)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 8008)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)
}

// ReadConfigFile reads the config file, if one can be found.
// Returns the path of the used file, or an empty string if defaults are used.
func ReadConfigFile() (string, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			ui.Warning("No configuration file found, using defaults")
			return "", nil
		}
		return "", fmt.Errorf("error reading config file: %w", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed(), nil
}

// LoadConfig decodes the current viper state into CurrentConfig
func LoadConfig() error {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHook()))
	if err != nil {
		return fmt.Errorf("unable to decode into struct: %w", err)
	}
	return nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
