package motor

import (
	"github.com/markusressel/motor2go/internal/controller"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current status of the controller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		status, err := client.Status(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	},
}

var gainsCmd = &cobra.Command{
	Use:   "gains",
	Short: "Get or set the gains of the PID loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		var gains controller.Gains
		flags := cmd.Flags()
		if flags.Changed("kp") || flags.Changed("ki") || flags.Changed("kd") {
			var update controller.GainsUpdate
			if flags.Changed("kp") {
				update.P = &kp
			}
			if flags.Changed("ki") {
				update.I = &ki
			}
			if flags.Changed("kd") {
				update.D = &kd
			}
			gains, err = client.UpdateGains(cmd.Context(), update)
			if err != nil {
				return err
			}
			ui.Success("Gains updated")
		} else {
			gains, err = client.Gains(cmd.Context())
			if err != nil {
				return err
			}
		}

		ui.Printfln("P: %g, I: %g, D: %g", gains.P, gains.I, gains.D)
		return nil
	},
}

var (
	kp float64
	ki float64
	kd float64
)

func printStatus(status controller.Status) {
	data := pterm.TableData{
		{"State", status.State.String()},
		{"Setpoint", pterm.Sprintf("%.1f rpm", status.Setpoint)},
		{"Measured", pterm.Sprintf("%.1f rpm (avg %.1f)", status.Measured, status.AvgRpm)},
		{"Command", pterm.Sprintf("%.4f", status.Command)},
		{"Tick", pterm.Sprintf("%.3f ms (avg %.3f, max %.3f)", status.Dt*1000, status.AvgDt*1000, status.MaxDt*1000)},
		{"Ticks", pterm.Sprintf("%d (overruns: %d)", status.Ticks, status.Overruns)},
		{"Errors", pterm.Sprintf("actuator: %d, sink: %d", status.ActuatorErrors, status.SinkErrors)},
		{"Resets", pterm.Sprintf("%d", status.Resets)},
	}
	if status.Gains != nil {
		data = append(data, []string{"Gains", pterm.Sprintf("P: %g, I: %g, D: %g", status.Gains.P, status.Gains.I, status.Gains.D)})
	}
	err := pterm.DefaultTable.WithData(data).Render()
	if err != nil {
		ui.Error("Error printing status: %v", err)
	}
}

func init() {
	gainsCmd.Flags().Float64Var(&kp, "kp", 0, "proportional gain")
	gainsCmd.Flags().Float64Var(&ki, "ki", 0, "integral gain")
	gainsCmd.Flags().Float64Var(&kd, "kd", 0, "derivative gain")

	Command.AddCommand(statusCmd)
	Command.AddCommand(gainsCmd)
}
