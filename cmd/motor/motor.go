package motor

import (
	"errors"

	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/api"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "motor",
	Short:            "Commands to interact with a running daemon",
	Long:             `These commands use the REST API of a running daemon, configured via api.host and api.port.`,
	TraverseChildren: true,
}

func getClient() (*api.Client, error) {
	if err := global.LoadConfig(); err != nil {
		return nil, err
	}
	config := configuration.CurrentConfig.Api
	if !config.Enabled {
		return nil, errors.New("api is disabled in the configuration")
	}
	return api.NewClient(config.Host, config.Port), nil
}
