package telemetry

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/markusressel/motor2go/internal/ui"
)

var (
	ErrSinkFull    = errors.New("telemetry buffer is full")
	ErrSinkStopped = errors.New("telemetry sink is stopped")
)

// AsyncSink hands records to another sink on a separate goroutine,
// so slow sinks do not delay the control loop.
type AsyncSink struct {
	next    Sink
	records chan Record
	dropped atomic.Uint64

	mu      sync.RWMutex
	stopped bool
}

func NewAsyncSink(next Sink, bufferSize int) *AsyncSink {
	return &AsyncSink{
		next:    next,
		records: make(chan Record, bufferSize),
	}
}

// Emit never blocks, records are dropped if the buffer is full
// or the sink has been stopped
func (a *AsyncSink) Emit(record Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.stopped {
		a.dropped.Add(1)
		return ErrSinkStopped
	}
	select {
	case a.records <- record:
		return nil
	default:
		a.dropped.Add(1)
		return ErrSinkFull
	}
}

// Stop ends the input of this sink. Records emitted before Stop are still
// forwarded by Run. Must be called once the producer has stopped emitting.
func (a *AsyncSink) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.stopped = true
	close(a.records)
}

// Dropped returns the number of records dropped because the buffer was full
// or the sink was already stopped
func (a *AsyncSink) Dropped() uint64 {
	return a.dropped.Load()
}

// Run forwards records until Stop has been called and the buffer is empty,
// then closes the next sink.
func (a *AsyncSink) Run() error {
	for record := range a.records {
		if err := a.next.Emit(record); err != nil {
			ui.Warning("Error emitting telemetry: %v", err)
		}
	}
	return Close(a.next)
}
