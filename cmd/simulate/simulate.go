package simulate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/motor2go/cmd/global"
	"github.com/markusressel/motor2go/internal/analysis"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/sim"
	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var (
	kp       float64
	ki       float64
	kd       float64
	low      float64
	high     float64
	stepTime time.Duration
	duration time.Duration
	outPath  string
	plot     bool
)

var Command = &cobra.Command{
	Use:   "simulate",
	Short: "Simulates a setpoint step against the motor model",
	Long: `Runs the configured control loop against the simulated motor in virtual time,
prints the step response metrics and optionally writes the telemetry as CSV.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := global.LoadConfig(); err != nil {
			return err
		}
		config := configuration.CurrentConfig

		options := sim.DefaultStepOptions(config)
		options.StepTime = stepTime
		options.Duration = duration

		flags := cmd.Flags()
		if flags.Changed("low") {
			options.Low = low
		}
		if flags.Changed("high") {
			options.High = high
		}
		if flags.Changed("kp") || flags.Changed("ki") || flags.Changed("kd") {
			gains := config.ControlLoop.Pid
			if flags.Changed("kp") {
				gains.P = kp
			}
			if flags.Changed("ki") {
				gains.I = ki
			}
			if flags.Changed("kd") {
				gains.D = kd
			}
			options.Gains = &gains
		}

		result, err := sim.SimulateStep(config, options)
		if err != nil {
			return err
		}
		ui.Info("Simulated %d ticks, illegal transitions: %d", len(result.Records), result.IllegalTransitions)

		if outPath != "" {
			path, err := util.ExpandPath(outPath)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err = telemetry.WriteCsv(&buf, result.Records); err != nil {
				return err
			}
			if err = util.WriteFileAtomic(path, &buf); err != nil {
				return err
			}
			ui.Success("Telemetry written to %s", path)
		}

		if plot {
			ui.Printfln(PlotRecords(result.Records, fmt.Sprintf("Step %.0f -> %.0f rpm", options.Low, options.High)))
		}

		metrics, err := analysis.AnalyzeStep(result.Records, analysis.DefaultSettlingBand)
		if err != nil {
			return err
		}
		return PrintMetrics(metrics)
	},
}

func init() {
	Command.Flags().Float64Var(&kp, "kp", 0, "proportional gain, defaults to the configured value")
	Command.Flags().Float64Var(&ki, "ki", 0, "integral gain, defaults to the configured value")
	Command.Flags().Float64Var(&kd, "kd", 0, "derivative gain, defaults to the configured value")
	Command.Flags().Float64Var(&low, "low", 0, "setpoint before the step, defaults to motor.stepLow")
	Command.Flags().Float64Var(&high, "high", 0, "setpoint after the step, defaults to motor.stepHigh")
	Command.Flags().DurationVar(&stepTime, "step-time", 500*time.Millisecond, "time of the setpoint step")
	Command.Flags().DurationVar(&duration, "duration", 5*time.Second, "total simulated time")
	Command.Flags().StringVarP(&outPath, "out", "o", "", "write the telemetry as CSV to this file")
	Command.Flags().BoolVarP(&plot, "plot", "p", false, "plot setpoint and measured speed")
}

// PlotRecords renders setpoint and measured speed of the given records
func PlotRecords(records []telemetry.Record, caption string) string {
	setpoints := make([]float64, len(records))
	measured := make([]float64, len(records))
	for i, record := range records {
		setpoints[i] = record.Setpoint
		measured[i] = record.Measured
	}
	return asciigraph.PlotMany(
		[][]float64{setpoints, measured},
		asciigraph.Height(15),
		asciigraph.Width(100),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Blue),
		asciigraph.Caption(caption),
	)
}

// PrintMetrics prints the step response metrics as a table
func PrintMetrics(metrics *analysis.StepMetrics) error {
	rows := [][]string{
		{"Step", fmt.Sprintf("%.0f -> %.0f rpm at %v", metrics.From, metrics.To, metrics.StepTime)},
		{"Rise time", formatDuration(metrics.RiseTime, metrics.Rose)},
		{"Peak", fmt.Sprintf("%.1f rpm", metrics.Peak)},
		{"Overshoot", fmt.Sprintf("%.1f %%", metrics.Overshoot)},
		{"Settling time", formatDuration(metrics.SettlingTime, metrics.Settled)},
		{"Steady state", fmt.Sprintf("%.1f ± %.1f rpm", metrics.SteadyStateMean, metrics.SteadyStateStdDev)},
		{"Steady state error", fmt.Sprintf("%.1f rpm", metrics.SteadyStateError)},
	}

	tab := table.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !global.NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return err
	}
	ui.Printfln(buf.String())
	return nil
}

func formatDuration(d time.Duration, reached bool) string {
	if !reached {
		return "never"
	}
	return d.Round(time.Millisecond).String()
}
