package telemetry

import (
	"errors"
	"time"
)

// Record is the state of a single control tick
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Setpoint  float64   `json:"setpoint"`
	Measured  float64   `json:"measured"`
	Command   float64   `json:"command"`
}

type Sink interface {
	Emit(record Record) error
}

// Closer is implemented by sinks that hold buffered state
type Closer interface {
	Close() error
}

// Close closes the given sink, if it holds any state
func Close(sink Sink) error {
	if closer, ok := sink.(Closer); ok {
		return closer.Close()
	}
	return nil
}

// DiscardSink drops every record
type DiscardSink struct{}

func (DiscardSink) Emit(Record) error {
	return nil
}

// MultiSink forwards every record to all of its sinks
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Emit(record Record) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Emit(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := Close(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DecimatingSink only forwards every n-th record
type DecimatingSink struct {
	next  Sink
	every int
	seen  int
}

func NewDecimatingSink(next Sink, every int) *DecimatingSink {
	if every < 1 {
		every = 1
	}
	return &DecimatingSink{next: next, every: every}
}

func (d *DecimatingSink) Emit(record Record) error {
	forward := d.seen%d.every == 0
	d.seen++
	if !forward {
		return nil
	}
	return d.next.Emit(record)
}

func (d *DecimatingSink) Close() error {
	return Close(d.next)
}

// MemorySink keeps all records, mostly useful for tests and offline simulation
type MemorySink struct {
	Records []Record
}

func (m *MemorySink) Emit(record Record) error {
	m.Records = append(m.Records, record)
	return nil
}
