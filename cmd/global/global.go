package global

import (
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/ui"
)

var (
	CfgFile string
	NoColor bool
	NoStyle bool
	Verbose bool
)

// LoadConfig reads, decodes and validates the configuration for a subcommand.
// The config file path comes from the root command (-c).
func LoadConfig() error {
	configPath, err := configuration.ReadConfigFile()
	if err != nil {
		return err
	}
	if configPath != "" {
		ui.Debug("Using configuration file at: %s", configPath)
	}
	if err = configuration.LoadConfig(); err != nil {
		return err
	}
	return configuration.Validate()
}
