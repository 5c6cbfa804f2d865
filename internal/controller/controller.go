package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/motor2go/internal/actuators"
	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/control_loop"
	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
	"github.com/oklog/run"
)

const (
	dtWindowSize  = 100
	rpmWindowSize = 10
)

var (
	ErrNotTunable    = errors.New("control loop does not support changing gains")
	ErrInvalidValue  = errors.New("value must be a finite, non-negative number")
	statusReportRate = 10 * time.Second
)

// Encoder is the part of the quadrature decoder used by the controller
type Encoder interface {
	// TakeDelta returns the counts since the last call and resets them
	TakeDelta() int32
}

type Gains struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

// GainsUpdate changes only the gains that are set
type GainsUpdate struct {
	P *float64 `json:"p,omitempty"`
	I *float64 `json:"i,omitempty"`
	D *float64 `json:"d,omitempty"`
}

// Status is a snapshot of the controller, taken at the end of the last tick
type Status struct {
	State    State   `json:"state"`
	Setpoint float64 `json:"setpoint"`
	Measured float64 `json:"measured"`
	AvgRpm   float64 `json:"avgRpm"`
	Command  float64 `json:"command"`
	Gains    *Gains  `json:"gains,omitempty"`

	// seconds
	Dt    float64 `json:"dt"`
	AvgDt float64 `json:"avgDt"`
	MaxDt float64 `json:"maxDt"`

	Ticks          uint64 `json:"ticks"`
	Overruns       uint64 `json:"overruns"`
	ActuatorErrors uint64 `json:"actuatorErrors"`
	SinkErrors     uint64 `json:"sinkErrors"`
	Resets         uint64 `json:"resets"`
}

// MotorController periodically reads the encoder, runs the control loop
// and applies the result to the actuator.
type MotorController struct {
	config   configuration.MotorConfig
	encoder  Encoder
	loop     control_loop.ControlLoop
	actuator actuators.Actuator
	sink     telemetry.Sink

	// changes requested by operators, applied by the control goroutine
	pendingMu       sync.Mutex
	pendingSetpoint float64
	pendingReset    bool
	pendingGains    *Gains

	// owned by the control goroutine
	setpoint  float64
	state     State
	dtWindow  *rolling.PointPolicy
	rpmWindow *rolling.PointPolicy

	statusMu sync.RWMutex
	status   Status

	ticks          atomic.Uint64
	overruns       atomic.Uint64
	actuatorErrors atomic.Uint64
	sinkErrors     atomic.Uint64
	resets         atomic.Uint64
}

func NewMotorController(
	config configuration.MotorConfig,
	encoder Encoder,
	loop control_loop.ControlLoop,
	actuator actuators.Actuator,
	sink telemetry.Sink,
) *MotorController {
	if sink == nil {
		sink = telemetry.DiscardSink{}
	}
	c := &MotorController{
		config:          config,
		encoder:         encoder,
		loop:            loop,
		actuator:        actuator,
		sink:            sink,
		pendingSetpoint: config.InitialSetpoint,
		setpoint:        config.InitialSetpoint,
		state:           stateOf(config.InitialSetpoint, config.IdleThreshold),
		dtWindow:        util.CreateRollingWindow(dtWindowSize),
		rpmWindow:       util.CreateRollingWindow(rpmWindowSize),
	}
	util.FillWindow(c.dtWindow, dtWindowSize, config.LoopPeriod().Seconds())
	c.status = Status{
		State:    c.state,
		Setpoint: c.setpoint,
		Gains:    c.currentGains(),
	}
	return c
}

// NewControlLoop creates the control loop selected by the given configuration
func NewControlLoop(config configuration.Configuration) (control_loop.ControlLoop, error) {
	limits := config.OutputLimits
	switch config.ControlLoop.Type {
	case configuration.ControlLoopTypePid:
		pid := config.ControlLoop.Pid
		return control_loop.NewPidControlLoop(pid.P, pid.I, pid.D, limits.Min, limits.Max), nil
	case configuration.ControlLoopTypeDirect:
		direct := config.ControlLoop.Direct
		return control_loop.NewDirectControlLoop(direct.MaxRpm, direct.MaxChangePerSecond, limits.Min, limits.Max), nil
	}
	return nil, fmt.Errorf("unsupported control loop type: %s", config.ControlLoop.Type)
}

// Start resets the control loop and discards counts accumulated before the first tick
func (c *MotorController) Start() {
	c.loop.Reset()
	c.resets.Add(1)
	discarded := c.encoder.TakeDelta()
	if discarded != 0 {
		ui.Debug("Discarded %d stale encoder counts", discarded)
	}
}

// Run ticks the controller at the configured rate until ctx is cancelled.
// The actuator is driven to 0 before Run returns.
func (c *MotorController) Run(ctx context.Context) error {
	period := c.config.LoopPeriod()
	if period <= 0 {
		return fmt.Errorf("invalid loop period: %v", period)
	}

	c.Start()
	defer c.SafeStop()

	ui.Info("Starting control loop at %.1f Hz (setpoint: %.2f rpm)", c.config.LoopHz, c.setpoint)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	{
		g.Add(func() error {
			return c.runLoop(ctx, period)
		}, func(err error) {
			cancel()
		})
	}
	{
		g.Add(func() error {
			tick := time.NewTicker(statusReportRate)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick.C:
					status := c.Status()
					ui.Debug("Controller %s: setpoint: %.2f, avg rpm: %.2f, command: %.4f, avg dt: %.5fs, overruns: %d",
						status.State, status.Setpoint, status.AvgRpm, status.Command, status.AvgDt, status.Overruns)
				}
			}
		}, func(err error) {
			cancel()
		})
	}

	return g.Run()
}

func (c *MotorController) runLoop(ctx context.Context, period time.Duration) error {
	timer := time.NewTimer(period)
	defer timer.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		c.Tick(now, dt)

		wait := period - time.Since(now)
		if wait <= 0 {
			// no catch up, the next tick uses the actual elapsed time
			c.overruns.Add(1)
			wait = 0
		}
		timer.Reset(wait)
	}
}

// Tick runs a single control iteration, dt is the time since the previous tick in seconds
func (c *MotorController) Tick(now time.Time, dt float64) telemetry.Record {
	c.applyPendingChanges()

	delta := c.encoder.TakeDelta()
	measured := util.CountsToRpm(delta, c.config.CountsPerRevolution, dt)

	command := c.loop.Loop(c.setpoint, measured, dt)

	err := c.actuator.SetCommand(command)
	if err != nil {
		c.actuatorErrors.Add(1)
		ui.Error("Error applying command %.4f to %s: %v", command, c.actuator.GetId(), err)
	}

	record := telemetry.Record{
		Timestamp: now,
		Setpoint:  c.setpoint,
		Measured:  measured,
		Command:   command,
	}
	err = c.sink.Emit(record)
	if err != nil {
		c.sinkErrors.Add(1)
		ui.Warning("Error emitting telemetry: %v", err)
	}

	c.ticks.Add(1)
	if dt > 0 {
		c.dtWindow.Append(dt)
	}
	c.rpmWindow.Append(measured)
	c.updateStatus(record, dt)

	return record
}

// SafeStop drives the actuator to 0
func (c *MotorController) SafeStop() {
	err := c.actuator.SetCommand(actuators.MinCommand)
	if err != nil {
		ui.Error("Unable to stop %s, make sure the motor is not running!", c.actuator.GetId())
		return
	}
	ui.Info("Stopped %s", c.actuator.GetId())
}

// SetSetpoint requests a new setpoint, effective from the next tick
func (c *MotorController) SetSetpoint(rpm float64) error {
	if math.IsNaN(rpm) || math.IsInf(rpm, 0) || rpm < 0 {
		return ErrInvalidValue
	}
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	c.pendingSetpoint = rpm
	return nil
}

// Toggle switches the setpoint between the configured step values and resets the control loop
func (c *MotorController) Toggle() float64 {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.pendingSetpoint < c.config.IdleThreshold {
		c.pendingSetpoint = c.config.StepHigh
	} else {
		c.pendingSetpoint = c.config.StepLow
	}
	c.pendingReset = true
	return c.pendingSetpoint
}

// Setpoint returns the most recently requested setpoint
func (c *MotorController) Setpoint() float64 {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return c.pendingSetpoint
}

// UpdateGains merges the given values into the most recently requested
// gains and requests the result, effective from the next tick
func (c *MotorController) UpdateGains(update GainsUpdate) (Gains, error) {
	if _, ok := c.loop.(control_loop.TunableControlLoop); !ok {
		return Gains{}, ErrNotTunable
	}
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	var gains Gains
	if c.pendingGains != nil {
		gains = *c.pendingGains
	} else if current := c.Status().Gains; current != nil {
		gains = *current
	}
	if update.P != nil {
		gains.P = *update.P
	}
	if update.I != nil {
		gains.I = *update.I
	}
	if update.D != nil {
		gains.D = *update.D
	}

	if err := validateGains(gains); err != nil {
		return Gains{}, err
	}
	c.pendingGains = &gains
	return gains, nil
}

func validateGains(gains Gains) error {
	for _, value := range []float64{gains.P, gains.I, gains.D} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return ErrInvalidValue
		}
	}
	return nil
}

// Status returns a copy of the status after the last tick
func (c *MotorController) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	status := c.status
	if status.Gains != nil {
		gains := *status.Gains
		status.Gains = &gains
	}
	return status
}

func (c *MotorController) applyPendingChanges() {
	c.pendingMu.Lock()
	setpoint := c.pendingSetpoint
	reset := c.pendingReset
	gains := c.pendingGains
	c.pendingReset = false
	c.pendingGains = nil
	c.pendingMu.Unlock()

	if gains != nil {
		if tunable, ok := c.loop.(control_loop.TunableControlLoop); ok {
			tunable.SetGains(gains.P, gains.I, gains.D)
			ui.Info("Control loop gains changed to p: %v, i: %v, d: %v", gains.P, gains.I, gains.D)
		}
	}

	state := stateOf(setpoint, c.config.IdleThreshold)
	if state != c.state {
		ui.Info("Controller state changed from %s to %s (setpoint: %.2f)", c.state, state, setpoint)
		reset = true
	}
	c.setpoint = setpoint
	c.state = state

	if reset {
		c.loop.Reset()
		c.resets.Add(1)
	}
}

func (c *MotorController) currentGains() *Gains {
	tunable, ok := c.loop.(control_loop.TunableControlLoop)
	if !ok {
		return nil
	}
	p, i, d := tunable.Gains()
	return &Gains{P: p, I: i, D: d}
}

func (c *MotorController) updateStatus(record telemetry.Record, dt float64) {
	status := Status{
		State:          c.state,
		Setpoint:       record.Setpoint,
		Measured:       record.Measured,
		AvgRpm:         util.GetWindowAvg(c.rpmWindow),
		Command:        record.Command,
		Gains:          c.currentGains(),
		Dt:             dt,
		AvgDt:          util.GetWindowAvg(c.dtWindow),
		MaxDt:          util.GetWindowMax(c.dtWindow),
		Ticks:          c.ticks.Load(),
		Overruns:       c.overruns.Load(),
		ActuatorErrors: c.actuatorErrors.Load(),
		SinkErrors:     c.sinkErrors.Load(),
		Resets:         c.resets.Load(),
	}

	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.status = status
}
