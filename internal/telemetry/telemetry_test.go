package telemetry

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func record(ms int, setpoint, measured, command float64) Record {
	return Record{
		Timestamp: start.Add(time.Duration(ms) * time.Millisecond),
		Setpoint:  setpoint,
		Measured:  measured,
		Command:   command,
	}
}

type fakeStore struct {
	batches [][]Record
	err     error
}

func (f *fakeStore) SaveTelemetry(runId string, records []Record) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, records)
	return nil
}

func TestCsvSink(t *testing.T) {
	// GIVEN
	buffer := &bytes.Buffer{}
	sink := NewCsvSink(buffer)

	// WHEN
	require.NoError(t, sink.Emit(record(0, 3000, 0, 1)))
	require.NoError(t, sink.Emit(record(5, 3000, 123.456, 0.123456)))

	// THEN
	expected := "time_ms,setpoint_rpm,measured_rpm,duty\n" +
		"0,3000.00,0.00,1.0000\n" +
		"5,3000.00,123.46,0.1235\n"
	assert.Equal(t, expected, buffer.String())
}

func TestWriteCsv_Empty(t *testing.T) {
	// GIVEN
	buffer := &bytes.Buffer{}

	// WHEN
	err := WriteCsv(buffer, nil)

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, buffer.String())
}

func TestDecimatingSink(t *testing.T) {
	// GIVEN
	memory := &MemorySink{}
	sink := NewDecimatingSink(memory, 3)

	// WHEN
	for i := 0; i < 7; i++ {
		require.NoError(t, sink.Emit(record(i, 0, float64(i), 0)))
	}

	// THEN
	require.Len(t, memory.Records, 3)
	assert.Equal(t, 0.0, memory.Records[0].Measured)
	assert.Equal(t, 3.0, memory.Records[1].Measured)
	assert.Equal(t, 6.0, memory.Records[2].Measured)
}

func TestMultiSink(t *testing.T) {
	// GIVEN
	a := &MemorySink{}
	b := &MemorySink{}
	sink := NewMultiSink(a, b, DiscardSink{})

	// WHEN
	err := sink.Emit(record(0, 1, 2, 0.5))

	// THEN
	assert.NoError(t, err)
	assert.Len(t, a.Records, 1)
	assert.Len(t, b.Records, 1)
}

func TestStoreSink_FlushesInBatches(t *testing.T) {
	// GIVEN
	store := &fakeStore{}
	sink := NewStoreSink(store, "run", 2)

	// WHEN
	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Emit(record(i, 0, 0, 0)))
	}

	// THEN
	assert.Len(t, store.batches, 2)

	// WHEN
	require.NoError(t, Close(sink))

	// THEN
	assert.Len(t, store.batches, 3)
	assert.Len(t, store.batches[2], 1)
	flushes, dropped := sink.Stats()
	assert.Equal(t, 3, flushes)
	assert.Equal(t, 0, dropped)
}

func TestStoreSink_Error(t *testing.T) {
	// GIVEN
	store := &fakeStore{err: errors.New("disk full")}
	sink := NewStoreSink(store, "run", 1)

	// WHEN
	err := sink.Emit(record(0, 0, 0, 0))

	// THEN
	assert.ErrorContains(t, err, "disk full")
	_, dropped := sink.Stats()
	assert.Equal(t, 1, dropped)
}
