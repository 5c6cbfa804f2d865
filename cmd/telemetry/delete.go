package telemetry

import (
	"errors"

	"github.com/markusressel/motor2go/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deletes the telemetry of a run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runId == "" {
			return errors.New("missing run id")
		}
		p, err := openPersistence()
		if err != nil {
			return err
		}
		if err = p.DeleteRun(runId); err != nil {
			return err
		}
		ui.Success("Deleted run %s", runId)
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
