package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/sysfs"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var (
	gpioRoot string
	pwmRoot  string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect devices",
	Long:  `Detects exported GPIO lines and PWM channels and prints them as a list`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var tables []table.Table

		gpioLines, err := sysfs.GetGpioLines(gpioRoot)
		if err != nil {
			ui.Warning("Unable to read GPIO lines from %s: %v", gpioRoot, err)
		}
		var gpioRows [][]string
		for _, line := range gpioLines {
			valueText := "N/A"
			if line.Value >= 0 {
				valueText = strconv.Itoa(line.Value)
			}
			gpioRows = append(gpioRows, []string{
				"", strconv.Itoa(line.Index), line.Direction, valueText, line.ValuePath,
			})
		}
		tables = append(tables, table.Table{
			Headers: []string{"GPIO", "Index", "Direction", "Value", "Path"},
			Rows:    gpioRows,
		})

		pwmChannels, err := sysfs.GetPwmChannels(pwmRoot)
		if err != nil {
			ui.Warning("Unable to read PWM channels from %s: %v", pwmRoot, err)
		}
		var pwmRows [][]string
		for _, channel := range pwmChannels {
			periodText := "N/A"
			if channel.Period >= 0 {
				periodText = fmt.Sprintf("%d (%d bit)", channel.Period, channel.Resolution())
			}
			dutyText := "N/A"
			if channel.DutyCycle >= 0 {
				dutyText = strconv.Itoa(channel.DutyCycle)
			}
			pwmRows = append(pwmRows, []string{
				"", channel.Chip, strconv.Itoa(channel.Index), periodText, dutyText,
				fmt.Sprintf("%v", channel.Enabled), channel.DutyCyclePath,
			})
		}
		tables = append(tables, table.Table{
			Headers: []string{"PWM", "Chip", "Index", "Period", "Duty", "Enabled", "Path"},
			Rows:    pwmRows,
		})

		tableConfig := &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		}

		for _, t := range tables {
			if t.Rows == nil {
				ui.Printfln("> %s: none found", t.Headers[0])
				continue
			}
			var buf bytes.Buffer
			if err := t.WriteTable(&buf, tableConfig); err != nil {
				ui.Fatal("Error printing table: %v", err)
			}
			ui.Printfln(buf.String())
		}
	},
}

func init() {
	detectCmd.Flags().StringVar(&gpioRoot, "gpio-root", sysfs.DefaultGpioRoot, "sysfs GPIO class directory")
	detectCmd.Flags().StringVar(&pwmRoot, "pwm-root", sysfs.DefaultPwmRoot, "sysfs PWM class directory")
	rootCmd.AddCommand(detectCmd)
}
