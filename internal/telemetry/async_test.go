package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncSink_ForwardsAndFlushesOnStop(t *testing.T) {
	// GIVEN
	store := &fakeStore{}
	storeSink := NewStoreSink(store, "run", 100)
	sink := NewAsyncSink(storeSink, 10)
	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Emit(record(i, 0, 0, 0)))
	}
	sink.Stop()

	// WHEN
	err := sink.Run()

	// THEN
	assert.NoError(t, err)
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 5)
}

func TestAsyncSink_KeepsRecordsEmittedWhileRunning(t *testing.T) {
	// GIVEN
	store := &fakeStore{}
	sink := NewAsyncSink(NewStoreSink(store, "run", 1000), 1000)
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = sink.Run()
	}()

	// WHEN
	for i := 0; i < 500; i++ {
		require.NoError(t, sink.Emit(record(i, 0, 0, 0)))
	}
	sink.Stop()
	wg.Wait()

	// THEN
	assert.NoError(t, runErr)
	total := 0
	for _, batch := range store.batches {
		total += len(batch)
	}
	assert.Equal(t, 500, total)
	assert.Equal(t, uint64(0), sink.Dropped())
}

func TestAsyncSink_RejectsRecordsAfterStop(t *testing.T) {
	// GIVEN
	memory := &MemorySink{}
	sink := NewAsyncSink(memory, 10)
	require.NoError(t, sink.Emit(record(0, 0, 0, 0)))
	sink.Stop()
	sink.Stop()

	// WHEN
	err := sink.Emit(record(1, 0, 0, 0))

	// THEN
	assert.ErrorIs(t, err, ErrSinkStopped)
	assert.Equal(t, uint64(1), sink.Dropped())
	assert.NoError(t, sink.Run())
	assert.Len(t, memory.Records, 1)
}

func TestAsyncSink_DropsWhenFull(t *testing.T) {
	// GIVEN
	sink := NewAsyncSink(&MemorySink{}, 2)

	// WHEN
	errs := []error{
		sink.Emit(record(0, 0, 0, 0)),
		sink.Emit(record(1, 0, 0, 0)),
		sink.Emit(record(2, 0, 0, 0)),
	}

	// THEN
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], ErrSinkFull)
	assert.Equal(t, uint64(1), sink.Dropped())
}
