package lines

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/ui"
	"github.com/markusressel/motor2go/internal/util"
)

// upper bound for a single wait, so cancellation is noticed
const edgeWaitTimeout = 100 * time.Millisecond

// edgeWaiter blocks until the kernel reports an edge on one of the lines
type edgeWaiter interface {
	Wait(timeout time.Duration) (a bool, b bool, err error)
	Read(line encoder.Line) (bool, error)
	Close() error
}

// SysfsLines reads two GPIO lines through their sysfs "value" files.
// Level changes are either reported by the kernel (edgeDetection: interrupt)
// or detected by polling both files at a fixed rate (edgeDetection: poll).
type SysfsLines struct {
	edgeHub
	pathA         string
	pathB         string
	edgeDetection string
	pollingRate   time.Duration

	watcher edgeWaiter

	a atomic.Bool
	b atomic.Bool

	readErrors atomic.Uint64
}

func NewSysfsLines(pathA string, pathB string, edgeDetection string, pollingRate time.Duration) *SysfsLines {
	return &SysfsLines{
		edgeHub:       newEdgeHub(),
		pathA:         pathA,
		pathB:         pathB,
		edgeDetection: edgeDetection,
		pollingRate:   pollingRate,
	}
}

// Init reads the initial level of both lines and, in interrupt mode,
// enables edge events on both of them
func (s *SysfsLines) Init() error {
	a, err := readLevel(s.pathA)
	if err != nil {
		return fmt.Errorf("reading encoder line A: %w", err)
	}
	b, err := readLevel(s.pathB)
	if err != nil {
		return fmt.Errorf("reading encoder line B: %w", err)
	}
	s.a.Store(a)
	s.b.Store(b)

	switch s.edgeDetection {
	case configuration.EdgeDetectionPoll:
		return nil
	case configuration.EdgeDetectionInterrupt:
		watcher, err := newEdgeWatcher(s.pathA, s.pathB)
		if err != nil {
			return err
		}
		s.useWatcher(watcher)
		return nil
	default:
		return fmt.Errorf("unsupported edge detection: %s", s.edgeDetection)
	}
}

func (s *SysfsLines) useWatcher(watcher edgeWaiter) {
	s.watcher = watcher
	// levels may have changed since the initial read
	s.refresh(true, true)
}

// Read returns the most recently observed level
func (s *SysfsLines) Read(line encoder.Line) bool {
	if line == encoder.LineB {
		return s.b.Load()
	}
	return s.a.Load()
}

// Run detects edges until the context is cancelled
func (s *SysfsLines) Run(ctx context.Context) error {
	if s.watcher != nil {
		return s.waitForEdges(ctx)
	}

	ticker := time.NewTicker(s.pollingRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Poll()
		}
	}
}

func (s *SysfsLines) waitForEdges(ctx context.Context) error {
	for ctx.Err() == nil {
		a, b, err := s.watcher.Wait(edgeWaitTimeout)
		if err != nil {
			return fmt.Errorf("waiting for encoder edges: %w", err)
		}
		s.refresh(a, b)
	}
	return nil
}

// refresh re-reads the given lines from the edge watcher and notifies
// subscribers if any level changed
func (s *SysfsLines) refresh(a bool, b bool) {
	changed := false
	if a {
		value, err := s.watcher.Read(encoder.LineA)
		changed = s.update(encoder.LineA, s.pathA, &s.a, value, err)
	}
	if b {
		value, err := s.watcher.Read(encoder.LineB)
		changed = s.update(encoder.LineB, s.pathB, &s.b, value, err) || changed
	}
	if changed {
		s.notify()
	}
}

// Poll reads both lines once and notifies subscribers if any level changed
func (s *SysfsLines) Poll() {
	value, err := readLevel(s.pathA)
	changed := s.update(encoder.LineA, s.pathA, &s.a, value, err)
	value, err = readLevel(s.pathB)
	changed = s.update(encoder.LineB, s.pathB, &s.b, value, err) || changed
	if changed {
		s.notify()
	}
}

func (s *SysfsLines) update(line encoder.Line, path string, level *atomic.Bool, value bool, err error) bool {
	if err != nil {
		if s.readErrors.Add(1) == 1 {
			ui.Warning("Unable to read encoder line %s from %s: %v", line, path, err)
		}
		return false
	}
	return level.Swap(value) != value
}

// ReadErrors returns the number of failed line reads
func (s *SysfsLines) ReadErrors() uint64 {
	return s.readErrors.Load()
}

// Close releases the file descriptors held for edge events
func (s *SysfsLines) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func readLevel(path string) (bool, error) {
	value, err := util.ReadIntFromFile(path)
	if err != nil {
		return false, err
	}
	return value != 0, nil
}
