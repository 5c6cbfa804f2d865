package telemetry

import (
	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/persistence"
	"github.com/spf13/cobra"
)

var runId string

var Command = &cobra.Command{
	Use:              "telemetry",
	Short:            "Commands for telemetry stored in the database",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&runId,
		"run", "r",
		"",
		"Run ID, see 'telemetry list'",
	)
}

func openPersistence() (persistence.Persistence, error) {
	if err := global.LoadConfig(); err != nil {
		return nil, err
	}
	return persistence.NewPersistence(configuration.CurrentConfig.DbPath), nil
}
