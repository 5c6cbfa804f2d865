//go:build linux

package lines

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/motor2go/internal/encoder"
	"golang.org/x/sys/unix"
)

// edgeWatcher waits for sysfs gpio edge events with epoll. The kernel
// signals an edge as EPOLLPRI on the "value" file, which stays pending
// until the file is read again from offset 0.
type edgeWatcher struct {
	epfd   int
	fds    [2]int
	events [2]unix.EpollEvent
}

func newEdgeWatcher(pathA string, pathB string) (*edgeWatcher, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("creating epoll instance: %w", err)
	}
	w := &edgeWatcher{epfd: epfd, fds: [2]int{-1, -1}}

	for i, path := range []string{pathA, pathB} {
		if err := enableEdges(path); err != nil {
			_ = w.Close()
			return nil, err
		}
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		w.fds[i] = fd

		event := unix.EpollEvent{Events: unix.EPOLLPRI | unix.EPOLLERR, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watching %s for edges: %w", path, err)
		}
	}
	return w, nil
}

// enableEdges configures the gpio next to the given value file to report both edges
func enableEdges(valuePath string) error {
	edgePath := filepath.Join(filepath.Dir(valuePath), "edge")
	file, err := os.OpenFile(edgePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("gpio line %s does not support edge events: %w", valuePath, err)
	}
	defer file.Close()
	if _, err = file.WriteString("both"); err != nil {
		return fmt.Errorf("enabling edge events on %s: %w", edgePath, err)
	}
	return nil
}

func (w *edgeWatcher) Wait(timeout time.Duration) (a bool, b bool, err error) {
	n, err := unix.EpollWait(w.epfd, w.events[:], int(timeout.Milliseconds()))
	if errors.Is(err, unix.EINTR) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	for _, event := range w.events[:n] {
		if int(event.Fd) == w.fds[1] {
			b = true
		} else {
			a = true
		}
	}
	return a, b, nil
}

func (w *edgeWatcher) Read(line encoder.Line) (bool, error) {
	fd := w.fds[0]
	if line == encoder.LineB {
		fd = w.fds[1]
	}
	var buf [2]byte
	n, err := unix.Pread(fd, buf[:], 0)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, io.ErrUnexpectedEOF
	}
	return buf[0] != '0', nil
}

func (w *edgeWatcher) Close() error {
	for i, fd := range w.fds {
		if fd >= 0 {
			_ = unix.Close(fd)
			w.fds[i] = -1
		}
	}
	return unix.Close(w.epfd)
}
