//go:build linux

package lines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/markusressel/motor2go/internal/configuration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGpio(t *testing.T, dir string, name string, withEdge bool) string {
	gpioDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(gpioDir, 0755))
	valuePath := filepath.Join(gpioDir, "value")
	writeLevel(t, valuePath, 0)
	if withEdge {
		require.NoError(t, os.WriteFile(filepath.Join(gpioDir, "edge"), []byte("none\n"), 0644))
	}
	return valuePath
}

func TestSysfsLines_InterruptWithoutEdgeSupport(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	pathA := createGpio(t, dir, "gpio34", false)
	pathB := createGpio(t, dir, "gpio35", false)
	lines := NewSysfsLines(pathA, pathB, configuration.EdgeDetectionInterrupt, 0)

	// WHEN
	err := lines.Init()

	// THEN
	assert.ErrorContains(t, err, "does not support edge events")
}

func TestSysfsLines_InterruptEnablesBothEdges(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	pathA := createGpio(t, dir, "gpio34", true)
	pathB := createGpio(t, dir, "gpio35", true)

	// WHEN
	// regular files cannot be watched with epoll, only sysfs gpio files can
	err := enableEdges(pathA)
	_, watchErr := newEdgeWatcher(pathA, pathB)

	// THEN
	require.NoError(t, err)
	edge, err := os.ReadFile(filepath.Join(dir, "gpio34", "edge"))
	require.NoError(t, err)
	assert.Equal(t, "both", string(edge[:4]))
	assert.ErrorContains(t, watchErr, "watching "+pathA+" for edges")
}
