//go:build !linux

package lines

import (
	"errors"
	"time"

	"github.com/markusressel/motor2go/internal/encoder"
)

var errEdgesUnsupported = errors.New("interrupt edge detection requires linux, use edgeDetection: poll")

type edgeWatcher struct{}

func newEdgeWatcher(pathA string, pathB string) (*edgeWatcher, error) {
	return nil, errEdgesUnsupported
}

func (w *edgeWatcher) Wait(timeout time.Duration) (a bool, b bool, err error) {
	return false, false, errEdgesUnsupported
}

func (w *edgeWatcher) Read(line encoder.Line) (bool, error) {
	return false, errEdgesUnsupported
}

func (w *edgeWatcher) Close() error {
	return nil
}
