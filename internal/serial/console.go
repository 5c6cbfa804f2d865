package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/markusressel/motor2go/internal/ui"
	bugst "go.bug.st/serial"
)

const (
	// CommandToggle switches between the step setpoints
	CommandToggle = 's'
	// CommandStop drives the setpoint to 0
	CommandStop = 'x'
)

// Port is the minimal interface needed for a serial port
type Port interface {
	io.ReadWriter
	io.Closer
}

type Operator interface {
	Toggle() float64
	SetSetpoint(rpm float64) error
}

// Open opens the serial port at the given path
func Open(path string, baud int) (Port, error) {
	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return port, nil
}

// Console writes telemetry to a serial port and reads single byte commands from it
type Console struct {
	port     Port
	operator Operator

	writeMu sync.Mutex
}

func NewConsole(port Port, operator Operator) *Console {
	return &Console{
		port:     port,
		operator: operator,
	}
}

// SetOperator sets the receiver of incoming commands, must be called before Run
func (c *Console) SetOperator(operator Operator) {
	c.operator = operator
}

func (c *Console) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.port.Write(p)
}

// Greet writes a short banner, prefixed as a comment so CSV parsers skip it
func (c *Console) Greet(loopHz float64) error {
	_, err := fmt.Fprintf(c, "# motor2go started, loop Hz: %.0f\n", loopHz)
	return err
}

// Run handles incoming commands until ctx is cancelled or the port is closed
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = c.port.Close()
	}()

	buffer := make([]byte, 64)
	for {
		n, err := c.port.Read(buffer)
		for _, b := range buffer[:n] {
			c.handleCommand(b)
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read serial port: %w", err)
		}
	}
}

func (c *Console) handleCommand(command byte) {
	switch command {
	case CommandToggle:
		setpoint := c.operator.Toggle()
		ui.Info("Serial console: setpoint toggled to %.2f rpm", setpoint)
	case CommandStop:
		if err := c.operator.SetSetpoint(0); err != nil {
			ui.Warning("Serial console: unable to stop: %v", err)
			return
		}
		ui.Info("Serial console: stopping")
	case '\r', '\n', ' ':
	default:
		ui.Debug("Serial console: ignoring unknown command %q", command)
	}
}
