package serial

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPort struct {
	reader *io.PipeReader
	writer *io.PipeWriter

	mu      sync.Mutex
	written bytes.Buffer
}

func NewMockPort() *MockPort {
	reader, writer := io.Pipe()
	return &MockPort{reader: reader, writer: writer}
}

func (p *MockPort) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *MockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *MockPort) Close() error {
	return p.reader.Close()
}

func (p *MockPort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

type MockOperator struct {
	mu       sync.Mutex
	toggles  int
	setpoint float64
}

func (o *MockOperator) Toggle() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.toggles++
	return 3000
}

func (o *MockOperator) SetSetpoint(rpm float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setpoint = rpm
	return nil
}

func (o *MockOperator) Toggles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.toggles
}

func TestConsole_HandleCommand(t *testing.T) {
	// GIVEN
	operator := &MockOperator{setpoint: 100}
	console := NewConsole(NewMockPort(), operator)

	// WHEN
	console.handleCommand('s')
	console.handleCommand('\n')
	console.handleCommand('q')
	console.handleCommand('x')

	// THEN
	assert.Equal(t, 1, operator.toggles)
	assert.Equal(t, 0.0, operator.setpoint)
}

func TestConsole_Run(t *testing.T) {
	// GIVEN
	port := NewMockPort()
	operator := &MockOperator{}
	console := NewConsole(port, operator)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- console.Run(ctx)
	}()

	// WHEN
	_, err := port.writer.Write([]byte("s\ns"))
	require.NoError(t, err)

	// THEN
	assert.Eventually(t, func() bool {
		return operator.Toggles() == 2
	}, time.Second, time.Millisecond)

	// WHEN
	cancel()

	// THEN
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("console did not stop")
	}
}

func TestConsole_RunStopsOnEOF(t *testing.T) {
	// GIVEN
	port := NewMockPort()
	console := NewConsole(port, &MockOperator{})
	require.NoError(t, port.writer.Close())

	// WHEN
	err := console.Run(context.Background())

	// THEN
	assert.NoError(t, err)
}

func TestConsole_WritesCsv(t *testing.T) {
	// GIVEN
	port := NewMockPort()
	console := NewConsole(port, &MockOperator{})
	sink := telemetry.NewCsvSink(console)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// WHEN
	require.NoError(t, console.Greet(200))
	require.NoError(t, sink.Emit(telemetry.Record{Timestamp: start, Setpoint: 3000, Measured: 12.5, Command: 1}))

	// THEN
	expected := "# motor2go started, loop Hz: 200\n" +
		"time_ms,setpoint_rpm,measured_rpm,duty\n" +
		"0,3000.00,12.50,1.0000\n"
	assert.Equal(t, expected, port.Written())
}
