package config

import (
	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Prints the effective configuration, including defaults",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := global.LoadConfig(); err != nil {
			return err
		}

		out, err := yaml.Marshal(configuration.CurrentConfig)
		if err != nil {
			return err
		}
		ui.Printf("%s", string(out))
		return nil
	},
}

func init() {
	Command.AddCommand(printCmd)
}
