package telemetry

import (
	"errors"
	"fmt"

	"github.com/markusressel/motor2go/cmd/simulate"
	"github.com/markusressel/motor2go/internal/analysis"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/spf13/cobra"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plots the telemetry of a run and analyzes its first setpoint step",
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
		if len(records) == 0 {
			ui.Info("Run %s has no records", runId)
			return nil
		}

		ui.Printfln(simulate.PlotRecords(records, fmt.Sprintf("Run %s", runId)))

		metrics, err := analysis.AnalyzeStep(records, analysis.DefaultSettlingBand)
		if errors.Is(err, analysis.ErrNoStep) {
			ui.Info("No setpoint step found")
			return nil
		}
		if err != nil {
			return err
		}
		return simulate.PrintMetrics(metrics)
	},
}

func init() {
	Command.AddCommand(plotCmd)
}
