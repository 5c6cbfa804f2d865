package actuators

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/markusressel/motor2go/internal/util"
)

// FileActuator writes the command as a raw duty cycle value to a file,
// e.g. the duty_cycle attribute of a sysfs PWM channel.
type FileActuator struct {
	ID   string
	Path string
	// highest raw duty value, i.e. 2^resolutionBits - 1
	MaxDuty int

	command atomic.Uint64
	lastRaw atomic.Int64
}

func NewFileActuator(id string, path string, resolutionBits int) *FileActuator {
	a := &FileActuator{
		ID:      id,
		Path:    path,
		MaxDuty: (1 << resolutionBits) - 1,
	}
	a.lastRaw.Store(-1)
	return a
}

func (a *FileActuator) GetId() string {
	return a.ID
}

func (a *FileActuator) SetCommand(value float64) error {
	value = clampCommand(value)
	raw := a.RawDuty(value)

	// avoid rewriting the same value on every tick
	if a.lastRaw.Load() != int64(raw) {
		if err := util.WriteIntToFile(raw, a.Path); err != nil {
			return fmt.Errorf("writing duty cycle to %s: %w", a.Path, err)
		}
		a.lastRaw.Store(int64(raw))
	}
	a.command.Store(math.Float64bits(value))
	return nil
}

func (a *FileActuator) GetCommand() float64 {
	return math.Float64frombits(a.command.Load())
}

// RawDuty maps a command (0..1) to the nearest raw duty value written to the file
func (a *FileActuator) RawDuty(value float64) int {
	return int(math.Round(clampCommand(value) * float64(a.MaxDuty)))
}
