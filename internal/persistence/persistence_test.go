package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/motor2go/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func createPersistence(t *testing.T) Persistence {
	p := NewPersistence(filepath.Join(t.TempDir(), "data", "motor2go.db"))
	require.NoError(t, p.Init())
	return p
}

func createRecords(offset int, count int) []telemetry.Record {
	var records []telemetry.Record
	for i := offset; i < offset+count; i++ {
		records = append(records, telemetry.Record{
			Timestamp: start.Add(time.Duration(i) * 5 * time.Millisecond),
			Setpoint:  3000,
			Measured:  float64(i * 10),
			Command:   float64(i) / 100,
		})
	}
	return records
}

func TestPersistence_Init_CreatesDirectory(t *testing.T) {
	// GIVEN
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	p := NewPersistence(filepath.Join(dir, "motor2go.db"))

	// WHEN
	err := p.Init()

	// THEN
	assert.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestPersistence_SaveAndLoadTelemetry(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	first := createRecords(0, 3)
	second := createRecords(3, 2)

	// WHEN
	require.NoError(t, p.SaveTelemetry("run-1", first))
	require.NoError(t, p.SaveTelemetry("run-1", second))
	records, err := p.LoadTelemetry("run-1")

	// THEN
	assert.NoError(t, err)
	require.Len(t, records, 5)
	for i, record := range records {
		assert.Equal(t, float64(i*10), record.Measured)
		assert.True(t, record.Timestamp.Equal(start.Add(time.Duration(i)*5*time.Millisecond)))
	}
}

func TestPersistence_LoadTelemetry_Missing(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	records, err := p.LoadTelemetry("unknown")

	// THEN
	assert.Nil(t, records)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersistence_ListRuns(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	require.NoError(t, p.SaveTelemetry("late", createRecords(100, 2)))
	require.NoError(t, p.SaveTelemetry("early", createRecords(0, 3)))
	require.NoError(t, p.SaveTelemetry("early", createRecords(3, 1)))

	// WHEN
	runs, err := p.ListRuns()

	// THEN
	assert.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "early", runs[0].Id)
	assert.Equal(t, 4, runs[0].Records)
	assert.True(t, runs[0].Updated.Equal(start.Add(15*time.Millisecond)))
	assert.Equal(t, "late", runs[1].Id)
	assert.Equal(t, 2, runs[1].Records)
}

func TestPersistence_ListRuns_Empty(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	runs, err := p.ListRuns()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPersistence_DeleteRun(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	require.NoError(t, p.SaveTelemetry("run-1", createRecords(0, 3)))

	// WHEN
	err := p.DeleteRun("run-1")

	// THEN
	assert.NoError(t, err)
	_, err = p.LoadTelemetry("run-1")
	assert.ErrorIs(t, err, os.ErrNotExist)
	runs, err := p.ListRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPersistence_DeleteRun_Missing(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	err := p.DeleteRun("unknown")

	// THEN
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersistence_SatisfiesTelemetryStore(t *testing.T) {
	var _ telemetry.Store = createPersistence(t)
}
