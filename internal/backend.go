package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/markusressel/motor2go/internal/actuators"
	"github.com/markusressel/motor2go/internal/api"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/controller"
	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/lines"
	"github.com/markusressel/motor2go/internal/persistence"
	"github.com/markusressel/motor2go/internal/serial"
	"github.com/markusressel/motor2go/internal/sim"
	"github.com/markusressel/motor2go/internal/statistics"
	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	motorId             = "motor"
	telemetryBufferSize = 4096
	shutdownTimeout     = 5 * time.Second
)

// Daemon holds all components of a running motor controller
type Daemon struct {
	config     configuration.Configuration
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	RunId      string
	Controller *controller.MotorController
	Decoder    *encoder.Decoder

	actuator   actuators.Actuator
	sysfsLines *lines.SysfsLines
	rig        *sim.Rig
	console    *serial.Console
	storeSink  *telemetry.AsyncSink
	sink       telemetry.Sink
	closers    []io.Closer
}

func RunDaemon() {
	daemon, err := NewDaemon(configuration.CurrentConfig, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		ui.Fatal("Unable to initialize: %v", err)
	}

	if err := daemon.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// NewDaemon creates and wires all components for the given configuration
func NewDaemon(config configuration.Configuration, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*Daemon, error) {
	d := &Daemon{
		config:     config,
		registerer: registerer,
		gatherer:   gatherer,
		RunId:      uuid.NewString(),
	}

	actuator, err := actuators.NewActuator(config)
	if err != nil {
		return nil, err
	}
	d.actuator = actuator

	var reader encoder.LineReader
	var edges encoder.EdgeSource
	switch config.Backend {
	case configuration.BackendHardware:
		d.sysfsLines = lines.NewSysfsLines(config.Hardware.EncoderA, config.Hardware.EncoderB, config.Hardware.EdgeDetection, config.Hardware.LinePollingRate)
		if err := d.sysfsLines.Init(); err != nil {
			return nil, err
		}
		d.closers = append(d.closers, d.sysfsLines)
		ui.Info("Detecting encoder edges by %s", config.Hardware.EdgeDetection)
		reader, edges = d.sysfsLines, d.sysfsLines
	case configuration.BackendSimulation:
		memoryLines := lines.NewMemoryLines()
		d.rig = sim.NewRig(config.Simulation, config.Motor.CountsPerRevolution, memoryLines, actuator)
		reader, edges = memoryLines, memoryLines
		statistics.RegisterWith(registerer, statistics.NewSimulationCollector(d.rig))
	default:
		return nil, fmt.Errorf("unsupported backend: %s", config.Backend)
	}

	d.Decoder = encoder.NewDecoder(reader, config.Encoder.Policy)
	d.Decoder.Attach(edges)
	d.Decoder.Begin()

	sink, err := d.createSink()
	if err != nil {
		d.close()
		return nil, err
	}
	d.sink = sink

	loop, err := controller.NewControlLoop(config)
	if err != nil {
		d.close()
		return nil, err
	}
	d.Controller = controller.NewMotorController(config.Motor, d.Decoder, loop, actuator, sink)

	if d.console != nil {
		d.console.SetOperator(d.Controller)
	}

	statistics.RegisterWith(registerer, statistics.NewControllerCollector(motorId, d.Controller))
	statistics.RegisterWith(registerer, statistics.NewEncoderCollector(motorId, d.Decoder))

	return d, nil
}

func (d *Daemon) createSink() (telemetry.Sink, error) {
	config := d.config
	var sinks []telemetry.Sink

	switch config.Telemetry.Csv {
	case "":
	case "-":
		sinks = append(sinks, telemetry.NewCsvSink(os.Stdout))
	default:
		path, err := util.ExpandPath(config.Telemetry.Csv)
		if err != nil {
			return nil, err
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create telemetry file: %w", err)
		}
		d.closers = append(d.closers, file)
		sinks = append(sinks, telemetry.NewCsvSink(file))
		ui.Info("Writing telemetry to %s", path)
	}

	if config.Telemetry.Store {
		pers := persistence.NewPersistence(config.DbPath)
		if err := pers.Init(); err != nil {
			return nil, err
		}
		d.storeSink = telemetry.NewAsyncSink(telemetry.NewStoreSink(pers, d.RunId, config.Telemetry.FlushSize), telemetryBufferSize)
		sinks = append(sinks, d.storeSink)
		ui.Info("Storing telemetry as run %s", d.RunId)
	}

	if config.Serial.Enabled {
		port, err := serial.Open(config.Serial.Port, config.Serial.Baud)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, port)
		d.console = serial.NewConsole(port, nil)
		if err := d.console.Greet(config.Motor.LoopHz); err != nil {
			return nil, err
		}
		sinks = append(sinks, telemetry.NewCsvSink(d.console))
	}

	if len(sinks) == 0 {
		return telemetry.DiscardSink{}, nil
	}
	return telemetry.NewDecimatingSink(telemetry.NewMultiSink(sinks...), config.Telemetry.Decimation), nil
}

// Run runs all components until ctx is cancelled or a termination signal is received
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer d.close()

	var g run.Group
	{
		if d.config.Statistics.Enabled {
			// === Prometheus Exporter
			server := api.CreateMetricsServer(d.gatherer)
			addr := fmt.Sprintf(":%d", d.config.Statistics.Port)
			g.Add(func() error {
				ui.Info("Serving metrics on %s/metrics", addr)
				return startServer(server, addr)
			}, func(err error) {
				stopServer(server, "statistics")
			})
		}
	}
	{
		if d.config.Api.Enabled {
			// === REST API
			server, err := api.CreateRestService(d.Controller, d.registerer)
			if err != nil {
				return err
			}
			addr := fmt.Sprintf("%s:%d", d.config.Api.Host, d.config.Api.Port)
			g.Add(func() error {
				ui.Info("Serving REST API on %s", addr)
				return startServer(server, addr)
			}, func(err error) {
				stopServer(server, "api")
			})
		}
	}
	{
		if d.sysfsLines != nil {
			// === encoder line polling
			g.Add(func() error {
				return d.sysfsLines.Run(ctx)
			}, func(err error) {
				cancel()
			})
		}
		if d.rig != nil {
			// === simulated motor
			g.Add(func() error {
				return d.rig.Run(ctx)
			}, func(err error) {
				cancel()
			})
		}
	}
	{
		if d.storeSink != nil {
			// stopped by the controller actor once it no longer emits records
			g.Add(func() error {
				return d.storeSink.Run()
			}, func(err error) {
				cancel()
			})
		}
		if d.console != nil {
			g.Add(func() error {
				return d.console.Run(ctx)
			}, func(err error) {
				cancel()
			})
		}
	}
	{
		// === motor controller
		g.Add(func() error {
			err := d.Controller.Run(ctx)
			ui.Info("Motor controller stopped.")
			if d.storeSink != nil {
				d.storeSink.Stop()
			}
			return err
		}, func(err error) {
			if err != nil && !isShutdown(err) {
				ui.Warning("Something went wrong: %v", err)
			}
			cancel()
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}

	err := g.Run()
	if isShutdown(err) {
		return nil
	}
	return err
}

func (d *Daemon) close() {
	if err := telemetry.Close(d.sink); err != nil {
		ui.Warning("Error closing telemetry: %v", err)
	}
	for _, closer := range d.closers {
		_ = closer.Close()
	}
	d.closers = nil
}

func isShutdown(err error) bool {
	var signalError run.SignalError
	return err == nil || errors.As(err, &signalError) || errors.Is(err, context.Canceled)
}

func startServer(server *echo.Echo, addr string) error {
	err := server.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func stopServer(server *echo.Echo, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		ui.Warning("Error stopping %s server: %v", name, err)
		return
	}
	ui.Info("%s server stopped.", name)
}
