package motor

import (
	"strconv"

	"github.com/markusressel/motor2go/internal/ui"
	"github.com/spf13/cobra"
)

var setpointCmd = &cobra.Command{
	Use:   "setpoint [rpm]",
	Short: "Get or set the speed setpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			setpoint, err := client.Setpoint(cmd.Context())
			if err != nil {
				return err
			}
			ui.Printfln("%.1f", setpoint)
			return nil
		}

		rpm, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		setpoint, err := client.SetSetpoint(cmd.Context(), rpm)
		if err != nil {
			return err
		}
		ui.Success("Setpoint set to %.1f rpm", setpoint)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle between the configured step setpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}
		setpoint, err := client.Toggle(cmd.Context())
		if err != nil {
			return err
		}
		ui.Success("Setpoint toggled to %.1f rpm", setpoint)
		return nil
	},
}

func init() {
	Command.AddCommand(setpointCmd)
	Command.AddCommand(toggleCmd)
}
