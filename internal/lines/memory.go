package lines

import (
	"sync/atomic"

	"github.com/markusressel/motor2go/internal/encoder"
)

// MemoryLines is a pair of lines held in memory, driven by Set.
// Used by the simulation and in tests.
type MemoryLines struct {
	edgeHub
	a atomic.Bool
	b atomic.Bool
}

func NewMemoryLines() *MemoryLines {
	return &MemoryLines{
		edgeHub: newEdgeHub(),
	}
}

func (m *MemoryLines) Read(line encoder.Line) bool {
	if line == encoder.LineB {
		return m.b.Load()
	}
	return m.a.Load()
}

// Set changes the level of a line and notifies all subscribers if the level changed
func (m *MemoryLines) Set(line encoder.Line, level bool) {
	var previous bool
	if line == encoder.LineB {
		previous = m.b.Swap(level)
	} else {
		previous = m.a.Swap(level)
	}
	if previous != level {
		m.notify()
	}
}

// SetPhase drives both lines to the given phase, changing A before B
func (m *MemoryLines) SetPhase(phase encoder.Phase) {
	m.Set(encoder.LineA, phase&0b10 != 0)
	m.Set(encoder.LineB, phase&0b01 != 0)
}

// Phase returns the current phase of both lines
func (m *MemoryLines) Phase() encoder.Phase {
	return encoder.PhaseOf(m.a.Load(), m.b.Load())
}
