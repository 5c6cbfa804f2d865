package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/motor2go/cmd/config"
	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/cmd/motor"
	"github.com/markusressel/motor2go/cmd/simulate"
	"github.com/markusressel/motor2go/cmd/telemetry"
	"github.com/markusressel/motor2go/internal"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "motor2go",
	Short: "A daemon to control the speed of a DC motor.",
	Long: `motor2go is a simple daemon that decodes a quadrature encoder
and regulates the speed of a DC motor with a closed control loop.`,
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		configPath, err := configuration.ReadConfigFile()
		if err != nil {
			ui.Fatal(err.Error())
		}
		if configPath != "" {
			ui.Info("Using configuration file at: %s", configPath)
		}
		if err = configuration.LoadConfig(); err != nil {
			ui.Fatal(err.Error())
		}
		if err = configuration.Validate(); err != nil {
			ui.Fatal("Config Validation Error: %v", err)
		}

		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/motor2go.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	rootCmd.AddCommand(config.Command)
	rootCmd.AddCommand(simulate.Command)
	rootCmd.AddCommand(telemetry.Command)
	rootCmd.AddCommand(motor.Command)
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("motor", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("2", pterm.NewStyle(pterm.FgWhite)),
		pterm.NewLettersFromStringWithStyle("go", pterm.NewStyle(pterm.FgLightBlue)),
	).Render()
	if err != nil {
		fmt.Println("motor2go")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		setupUi()
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
