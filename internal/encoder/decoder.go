package encoder

import (
	"sync"
)

// Line identifies one of the two encoder lines
type Line int

const (
	LineA Line = iota
	LineB
)

func (l Line) String() string {
	if l == LineB {
		return "B"
	}
	return "A"
}

// LineReader reads the current level of an encoder line
type LineReader interface {
	Read(line Line) bool
}

// EdgeSource calls subscribed handlers whenever one of the encoder lines changes its level.
// Handlers may be called from a different goroutine than the one that subscribed.
type EdgeSource interface {
	Subscribe(handler func()) (unsubscribe func())
}

// Decoder turns quadrature line transitions into a signed count.
type Decoder struct {
	reader LineReader
	policy Policy

	mu        sync.Mutex
	started   bool
	lastPhase Phase
	// counts since the last TakeDelta
	count int64
	// counts since Begin
	position int64
	illegal  uint64
}

func NewDecoder(reader LineReader, policy Policy) *Decoder {
	return &Decoder{
		reader: reader,
		policy: policy,
	}
}

// Begin captures the initial phase of the lines. Edges are ignored until Begin was called.
func (d *Decoder) Begin() {
	if d.reader == nil {
		return
	}
	phase := d.readPhase()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastPhase = phase
	d.started = true
}

// Attach subscribes this decoder to the given edge source.
func (d *Decoder) Attach(source EdgeSource) (detach func()) {
	return source.Subscribe(func() {
		d.OnEdge()
	})
}

// OnEdge handles a level change on either line.
func (d *Decoder) OnEdge() {
	if d.reader == nil {
		return
	}
	phase := d.readPhase()

	d.mu.Lock()
	if !d.started || phase == d.lastPhase {
		d.mu.Unlock()
		return
	}
	step, legal := Classify(d.policy, d.lastPhase, phase)
	d.count += int64(step)
	d.position += int64(step)
	d.lastPhase = phase
	if !legal {
		d.illegal++
	}
	d.mu.Unlock()
}

// TakeDelta returns the counts accumulated since the last call and resets them to zero.
func (d *Decoder) TakeDelta() int32 {
	d.mu.Lock()
	value := d.count
	d.count = 0
	d.mu.Unlock()
	return int32(value)
}

// Count returns the counts accumulated since the last TakeDelta, without resetting them.
func (d *Decoder) Count() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Position returns the counts accumulated since Begin
func (d *Decoder) Position() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// IllegalTransitions returns the number of transitions that skipped a phase
func (d *Decoder) IllegalTransitions() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.illegal
}

func (d *Decoder) Policy() Policy {
	return d.policy
}

func (d *Decoder) readPhase() Phase {
	return PhaseOf(d.reader.Read(LineA), d.reader.Read(LineB))
}
