package control_loop

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestDirect_Simple(t *testing.T) {
	// GIVEN
	loop := NewDirectControlLoop(6000, 0, 0, 1)

	// WHEN
	output := loop.Loop(3000, 0, 0.005)

	// THEN
	assert.Equal(t, 0.5, output)

	// WHEN
	output = loop.Loop(3000, 2500, 0.005)

	// THEN
	// measurement is ignored
	assert.Equal(t, 0.5, output)
}

func TestDirect_Clamped(t *testing.T) {
	// GIVEN
	loop := NewDirectControlLoop(6000, 0, 0, 1)

	// WHEN
	output := loop.Loop(9000, 0, 0.005)

	// THEN
	assert.Equal(t, 1.0, output)
}

func TestDirect_MaxChange(t *testing.T) {
	// GIVEN
	loop := NewDirectControlLoop(6000, 2, 0, 1)

	// WHEN
	output := loop.Loop(6000, 0, 0.1)

	// THEN
	assert.InDelta(t, 0.2, output, 1e-9)

	// WHEN
	output = loop.Loop(6000, 0, 0.1)

	// THEN
	assert.InDelta(t, 0.4, output, 1e-9)

	// WHEN
	loop.Reset()
	output = loop.Loop(6000, 0, 0.1)

	// THEN
	assert.InDelta(t, 0.2, output, 1e-9)
}

func TestDirect_InvalidDt(t *testing.T) {
	loop := NewDirectControlLoop(6000, 0, 0, 1)
	assert.Equal(t, 0.0, loop.Loop(3000, 0, 0))
}
