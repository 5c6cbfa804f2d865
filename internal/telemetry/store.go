package telemetry

import (
	"fmt"
	"sync"

	"github.com/markusressel/motor2go/internal/ui"
)

type Store interface {
	SaveTelemetry(runId string, records []Record) error
}

// StoreSink buffers records and writes them to a Store in batches
type StoreSink struct {
	store     Store
	runId     string
	flushSize int

	mu      sync.Mutex
	buffer  []Record
	flushes int
	failed  int
}

func NewStoreSink(store Store, runId string, flushSize int) *StoreSink {
	if flushSize < 1 {
		flushSize = 1
	}
	return &StoreSink{
		store:     store,
		runId:     runId,
		flushSize: flushSize,
		buffer:    make([]Record, 0, flushSize),
	}
}

func (s *StoreSink) Emit(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, record)
	if len(s.buffer) < s.flushSize {
		return nil
	}
	return s.flushLocked()
}

// Flush writes all buffered records
func (s *StoreSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *StoreSink) Close() error {
	return s.Flush()
}

func (s *StoreSink) flushLocked() error {
	if len(s.buffer) == 0 {
		return nil
	}
	records := make([]Record, len(s.buffer))
	copy(records, s.buffer)
	s.buffer = s.buffer[:0]

	err := s.store.SaveTelemetry(s.runId, records)
	if err != nil {
		s.failed += len(records)
		ui.Warning("Dropped %d telemetry records of run %s", len(records), s.runId)
		return fmt.Errorf("flush telemetry: %w", err)
	}
	s.flushes++
	return nil
}

// Stats returns the number of successful flushes and the number of dropped records
func (s *StoreSink) Stats() (flushes int, dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes, s.failed
}
