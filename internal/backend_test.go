package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/persistence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConfig(t *testing.T) configuration.Configuration {
	dir := t.TempDir()
	return configuration.Configuration{
		DbPath:  filepath.Join(dir, "motor2go.db"),
		Backend: configuration.BackendSimulation,
		Motor: configuration.MotorConfig{
			LoopHz:              200,
			CountsPerRevolution: 1024,
			IdleThreshold:       1,
			StepHigh:            3000,
			InitialSetpoint:     3000,
		},
		ControlLoop: configuration.ControlLoopConfig{
			Type: configuration.ControlLoopTypePid,
			Pid:  configuration.PidConfig{P: 0.005, I: 0.03},
		},
		OutputLimits: configuration.OutputLimitsConfig{Min: 0, Max: 1},
		Encoder:      configuration.EncoderConfig{Policy: encoder.PolicyLenient},
		Hardware: configuration.HardwareConfig{
			LinePollingRate:   time.Millisecond,
			PwmResolutionBits: 8,
		},
		Simulation: configuration.SimulationConfig{
			TimeConstant: 0.05,
			MaxRpm:       6000,
			StepRate:     time.Millisecond,
		},
		Telemetry: configuration.TelemetryConfig{
			Csv:        filepath.Join(dir, "telemetry.csv"),
			Store:      true,
			Decimation: 2,
			FlushSize:  10,
		},
	}
}

func gatheredNames(t *testing.T, registry *prometheus.Registry) []string {
	families, err := registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, family := range families {
		names = append(names, family.GetName())
	}
	return names
}

func TestDaemon_Simulation(t *testing.T) {
	// GIVEN
	config := createConfig(t)
	registry := prometheus.NewRegistry()
	daemon, err := NewDaemon(config, registry, registry)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// WHEN
	err = daemon.Run(ctx)

	// THEN
	assert.NoError(t, err)

	status := daemon.Controller.Status()
	assert.Greater(t, status.Ticks, uint64(10))
	assert.Equal(t, 3000.0, status.Setpoint)
	assert.Greater(t, status.AvgRpm, 0.0)
	assert.Greater(t, daemon.Decoder.Position(), int64(0))

	csv, err := os.ReadFile(config.Telemetry.Csv)
	require.NoError(t, err)
	csvLines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	assert.Equal(t, "time_ms,setpoint_rpm,measured_rpm,duty", csvLines[0])
	assert.Greater(t, len(csvLines), 5)

	runs, err := persistence.NewPersistence(config.DbPath).ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, daemon.RunId, runs[0].Id)
	// every record written to the csv file also reached the store
	assert.Equal(t, len(csvLines)-1, runs[0].Records)

	names := gatheredNames(t, registry)
	assert.Contains(t, names, "motor2go_controller_ticks_total")
	assert.Contains(t, names, "motor2go_encoder_position_counts")
	assert.Contains(t, names, "motor2go_simulation_true_rpm")
}

func TestDaemon_Hardware(t *testing.T) {
	// GIVEN
	config := createConfig(t)
	dir := t.TempDir()
	config.Backend = configuration.BackendHardware
	config.Hardware.EncoderA = filepath.Join(dir, "gpio34_value")
	config.Hardware.EncoderB = filepath.Join(dir, "gpio35_value")
	config.Hardware.PwmPath = filepath.Join(dir, "duty_cycle")
	config.Hardware.EdgeDetection = configuration.EdgeDetectionPoll
	config.Motor.InitialSetpoint = 0
	config.Telemetry = configuration.TelemetryConfig{Decimation: 1}
	require.NoError(t, os.WriteFile(config.Hardware.EncoderA, []byte("0\n"), 0644))
	require.NoError(t, os.WriteFile(config.Hardware.EncoderB, []byte("0\n"), 0644))

	registry := prometheus.NewRegistry()
	daemon, err := NewDaemon(config, registry, registry)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// WHEN
	err = daemon.Run(ctx)

	// THEN
	assert.NoError(t, err)
	duty, err := os.ReadFile(config.Hardware.PwmPath)
	require.NoError(t, err)
	assert.Equal(t, "0", string(duty))
	assert.NotContains(t, gatheredNames(t, registry), "motor2go_simulation_true_rpm")
}

func TestDaemon_HardwareMissingLines(t *testing.T) {
	// GIVEN
	config := createConfig(t)
	config.Backend = configuration.BackendHardware
	config.Hardware.EncoderA = "/does/not/exist/a"
	config.Hardware.EncoderB = "/does/not/exist/b"

	// WHEN
	_, err := NewDaemon(config, prometheus.NewRegistry(), prometheus.NewRegistry())

	// THEN
	assert.Error(t, err)
}

func TestDaemon_HardwareInterruptRequiresEdgeSupport(t *testing.T) {
	// GIVEN
	config := createConfig(t)
	dir := t.TempDir()
	config.Backend = configuration.BackendHardware
	config.Hardware.EncoderA = filepath.Join(dir, "gpio34_value")
	config.Hardware.EncoderB = filepath.Join(dir, "gpio35_value")
	config.Hardware.PwmPath = filepath.Join(dir, "duty_cycle")
	config.Hardware.EdgeDetection = configuration.EdgeDetectionInterrupt
	require.NoError(t, os.WriteFile(config.Hardware.EncoderA, []byte("0\n"), 0644))
	require.NoError(t, os.WriteFile(config.Hardware.EncoderB, []byte("0\n"), 0644))

	// WHEN
	_, err := NewDaemon(config, prometheus.NewRegistry(), prometheus.NewRegistry())

	// THEN
	assert.Error(t, err)
}
