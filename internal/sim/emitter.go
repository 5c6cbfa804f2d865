package sim

import (
	"github.com/markusressel/motor2go/internal/encoder"
	"github.com/markusressel/motor2go/internal/lines"
)

var forwardSequence = [4]encoder.Phase{0b00, 0b01, 0b11, 0b10}

// QuadratureEmitter turns a (fractional) number of counts into
// quadrature transitions on a pair of memory lines.
type QuadratureEmitter struct {
	lines    *lines.MemoryLines
	index    int
	fraction float64
	emitted  int64
}

func NewQuadratureEmitter(lines *lines.MemoryLines) *QuadratureEmitter {
	e := &QuadratureEmitter{lines: lines}
	lines.SetPhase(forwardSequence[0])
	return e
}

// Advance emits one transition per whole count, the remainder is carried over.
// Negative counts run the sequence backwards.
func (e *QuadratureEmitter) Advance(counts float64) int {
	e.fraction += counts
	steps := 0
	for e.fraction >= 1 {
		e.fraction--
		e.step(1)
		steps++
	}
	for e.fraction <= -1 {
		e.fraction++
		e.step(-1)
		steps--
	}
	return steps
}

// Emitted returns the net number of transitions emitted so far
func (e *QuadratureEmitter) Emitted() int64 {
	return e.emitted
}

func (e *QuadratureEmitter) step(direction int) {
	e.index = (e.index + direction + len(forwardSequence)) % len(forwardSequence)
	e.emitted += int64(direction)
	e.lines.SetPhase(forwardSequence[e.index])
}
