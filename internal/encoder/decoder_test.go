package encoder

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLines struct {
	phase    atomic.Uint32
	mu       sync.Mutex
	handlers []func()
}

func (f *fakeLines) Read(line Line) bool {
	phase := f.phase.Load()
	if line == LineA {
		return phase&0b10 != 0
	}
	return phase&0b01 != 0
}

func (f *fakeLines) Subscribe(handler func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers = nil
	}
}

// set changes the line levels and notifies all subscribers
func (f *fakeLines) set(phase Phase) {
	f.phase.Store(uint32(phase))
	f.mu.Lock()
	handlers := append([]func(){}, f.handlers...)
	f.mu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

func newTestDecoder(policy Policy) (*Decoder, *fakeLines) {
	lines := &fakeLines{}
	decoder := NewDecoder(lines, policy)
	decoder.Attach(lines)
	decoder.Begin()
	return decoder, lines
}

func TestDecoder_ForwardCycle(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)

	// WHEN
	for _, phase := range []Phase{1, 3, 2, 0} {
		lines.set(phase)
	}

	// THEN
	assert.Equal(t, int32(4), decoder.TakeDelta())
}

func TestDecoder_ReverseCycle(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)

	// WHEN
	for _, phase := range []Phase{2, 3, 1, 0} {
		lines.set(phase)
	}

	// THEN
	assert.Equal(t, int32(-4), decoder.TakeDelta())
}

func TestDecoder_TakeDeltaResets(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)
	lines.set(1)
	lines.set(3)

	// WHEN
	first := decoder.TakeDelta()
	second := decoder.TakeDelta()

	// THEN
	assert.Equal(t, int32(2), first)
	assert.Equal(t, int32(0), second)
	assert.Equal(t, int64(2), decoder.Position())
}

func TestDecoder_CountDoesNotReset(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)
	lines.set(1)

	// WHEN
	count := decoder.Count()

	// THEN
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), decoder.Count())
	assert.Equal(t, int32(1), decoder.TakeDelta())
}

func TestDecoder_DuplicateEdgeIgnored(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)

	// WHEN
	lines.set(1)
	lines.set(1)
	lines.set(1)

	// THEN
	assert.Equal(t, int32(1), decoder.TakeDelta())
}

func TestDecoder_IllegalTransition_Lenient(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)

	// WHEN
	lines.set(3)

	// THEN
	assert.Equal(t, int32(-1), decoder.TakeDelta())
	assert.Equal(t, uint64(1), decoder.IllegalTransitions())
}

func TestDecoder_IllegalTransition_Strict(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyStrict)

	// WHEN
	lines.set(3)
	// resynchronized on phase 3, so this is a legal forward step
	lines.set(2)

	// THEN
	assert.Equal(t, int32(1), decoder.TakeDelta())
	assert.Equal(t, uint64(1), decoder.IllegalTransitions())
}

func TestDecoder_NotStarted(t *testing.T) {
	// GIVEN
	lines := &fakeLines{}
	decoder := NewDecoder(lines, PolicyLenient)
	decoder.Attach(lines)

	// WHEN
	lines.set(1)
	lines.set(3)

	// THEN
	assert.Equal(t, int32(0), decoder.TakeDelta())
}

func TestDecoder_NoReader(t *testing.T) {
	// GIVEN
	decoder := NewDecoder(nil, PolicyLenient)
	decoder.Begin()

	// WHEN
	decoder.OnEdge()

	// THEN
	assert.Equal(t, int32(0), decoder.TakeDelta())
	assert.Equal(t, int64(0), decoder.Count())
}

func TestDecoder_Detach(t *testing.T) {
	// GIVEN
	lines := &fakeLines{}
	decoder := NewDecoder(lines, PolicyLenient)
	detach := decoder.Attach(lines)
	decoder.Begin()

	// WHEN
	detach()
	lines.set(1)

	// THEN
	assert.Equal(t, int32(0), decoder.TakeDelta())
}

func TestDecoder_ConcurrentTakeDelta(t *testing.T) {
	// GIVEN
	decoder, lines := newTestDecoder(PolicyLenient)
	cycles := 20000
	sequence := []Phase{1, 3, 2, 0}

	var wg sync.WaitGroup
	done := make(chan struct{})
	var taken int64

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				taken += int64(decoder.TakeDelta())
			}
		}
	}()

	// WHEN
	for i := 0; i < cycles; i++ {
		for _, phase := range sequence {
			lines.set(phase)
		}
	}
	close(done)
	wg.Wait()
	taken += int64(decoder.TakeDelta())

	// THEN
	assert.Equal(t, int64(cycles*len(sequence)), taken)
	assert.Equal(t, int64(cycles*len(sequence)), decoder.Position())
}
