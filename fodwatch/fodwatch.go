// Package fodwatch mirrors the display pipeline's fod_ui kernel
// attribute into the fingerprint driver. Under-display sensors need
// the panel illumination command whenever the touch zone is pressed
// so capture exposure matches the highlight; the display driver flips
// the attribute, this watcher forwards it.
package fodwatch

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/veridianlabs/fpbridged/hallog"
)

// Vendor extension command driving under-display illumination.
const (
	CommandNit   int32 = 10
	ParamNitFOD  int32 = 1
	ParamNitNone int32 = 0
)

// Commander is the slice of the driver the watcher needs.
type Commander interface {
	ExtCmd(cmd int32, param int32) (int32, error)
}

// Watcher follows one fod_ui attribute for the life of the process.
type Watcher struct {
	f   *os.File
	dev Commander

	wait func(fd int) error
}

// New opens the attribute at path. An open failure disables only this
// watcher; the caller logs it and keeps the device in service.
func New(path string, dev Commander) (*Watcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fodwatch: open %s: %w", path, err)
	}
	w := &Watcher{f: f, dev: dev}
	w.wait = w.pollPri
	return w, nil
}

// pollPri blocks until the attribute signals an out-of-band change.
// Sysfs raises POLLPRI on store, POLLERR rides along on teardown.
func (w *Watcher) pollPri(fd int) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLERR | unix.POLLPRI}}
	_, err := unix.Poll(fds, -1)
	return err
}

// Run loops forever mirroring the attribute into the driver. Meant to
// run detached on its own goroutine.
func (w *Watcher) Run() {
	hallog.Info("fod_ui watcher running on %s", w.f.Name())
	for {
		w.step()
	}
}

// step waits for one attribute change and issues the matching NIT
// command. Transient failures are logged and absorbed so the loop
// keeps its post.
func (w *Watcher) step() {
	if err := w.wait(int(w.f.Fd())); err != nil {
		if err != unix.EINTR {
			hallog.Warn("fod_ui poll: %v", err)
		}
		return
	}
	param := ParamNitNone
	if w.readState() {
		param = ParamNitFOD
	}
	if _, err := w.dev.ExtCmd(CommandNit, param); err != nil {
		hallog.Warn("fod_ui extension command: %v", err)
	}
}

// readState reads the attribute value: any byte but '0' means the
// touch zone is pressed. Read failures count as released.
func (w *Watcher) readState() bool {
	if _, err := w.f.Seek(0, 0); err != nil {
		hallog.Warn("fod_ui seek: %v", err)
		return false
	}
	var buf [1]byte
	if _, err := w.f.Read(buf[:]); err != nil {
		hallog.Warn("fod_ui read: %v", err)
		return false
	}
	return buf[0] != '0'
}
