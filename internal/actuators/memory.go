package actuators

import (
	"math"
	"sync/atomic"
)

// MemoryActuator keeps the command in memory, where the simulated motor picks it up
type MemoryActuator struct {
	ID      string
	command atomic.Uint64
}

func NewMemoryActuator(id string) *MemoryActuator {
	return &MemoryActuator{ID: id}
}

func (a *MemoryActuator) GetId() string {
	return a.ID
}

func (a *MemoryActuator) SetCommand(value float64) error {
	a.command.Store(math.Float64bits(clampCommand(value)))
	return nil
}

func (a *MemoryActuator) GetCommand() float64 {
	return math.Float64frombits(a.command.Load())
}
