package telemetry

import (
	"bytes"
	"errors"
	"os"

	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
	"github.com/spf13/cobra"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the telemetry of a run as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runId == "" {
			return errors.New("missing run id")
		}
		p, err := openPersistence()
		if err != nil {
			return err
		}
		records, err := p.LoadTelemetry(runId)
		if err != nil {
			return err
		}

		if exportPath == "" || exportPath == "-" {
			return telemetry.WriteCsv(os.Stdout, records)
		}

		path, err := util.ExpandPath(exportPath)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err = telemetry.WriteCsv(&buf, records); err != nil {
			return err
		}
		if err = util.WriteFileAtomic(path, &buf); err != nil {
			return err
		}
		ui.Success("Exported %d records to %s", len(records), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "-", "target file, '-' for stdout")
	Command.AddCommand(exportCmd)
}
