// Package bridge is the client-facing fingerprint surface. It opens
// one vendor driver, validates client arguments, translates driver
// codes into the protocol vocabulary and relays driver events to the
// registered client, with the platform power and display plumbing
// attached on the side.
package bridge

import (
	"golang.org/x/sys/unix"

	"github.com/veridianlabs/fpbridged/fodwatch"
	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sensor"
	"github.com/veridianlabs/fpbridged/statuscode"
	"github.com/veridianlabs/fpbridged/sysprop"
)

// PropFOD advertises an under-display sensor to the platform.
const PropFOD = "ro.hardware.fp.fod"

// Params wires a Bridge together.
type Params struct {
	Modules []sensor.Module
	FODPath string
	Props   *sysprop.Store
	Power   Booster
}

// Bridge is the single fingerprint device instance this process
// serves.
type Bridge struct {
	dev  *sensor.Opened
	disp *dispatcher
	fod  bool
}

// New opens the first usable driver from p.Modules and assembles the
// bridge around it. No usable driver fails construction; the
// under-display extras (capability property and fod_ui watcher)
// degrade to log lines instead.
func New(p Params) (*Bridge, error) {
	disp := &dispatcher{power: p.Power}
	dev, err := sensor.OpenFirst(p.Modules, disp.handle, p.Props)
	if err != nil {
		return nil, err
	}
	disp.setDevice(dev.ID())

	b := &Bridge{dev: dev, disp: disp, fod: dev.Module().FOD}
	if b.fod {
		if err := p.Props.Set(PropFOD, "true"); err != nil {
			hallog.Warn("can't persist fod capability: %v", err)
		}
		if w, err := fodwatch.New(p.FODPath, dev); err != nil {
			hallog.Error("fod_ui watcher disabled: %v", err)
		} else {
			go w.Run()
		}
	}
	return b, nil
}

// SetNotify registers the client and returns the device instance
// handle its events will carry.
func (b *Bridge) SetNotify(cb ClientCallback) uint64 {
	return b.disp.setNotify(cb)
}

// PreEnroll fetches an enrollment challenge from the driver.
func (b *Bridge) PreEnroll() (uint64, error) {
	return b.dev.PreEnroll()
}

// Enroll starts an enrollment under the authority of hat, a hardware
// authenticator token minted against the PreEnroll challenge.
func (b *Bridge) Enroll(hat []byte, gid uint32, timeoutSec uint32) statuscode.RequestStatus {
	if len(hat) != sensor.AuthTokenSize {
		hallog.Error("rejecting enroll, token is %d bytes, want %d", len(hat), sensor.AuthTokenSize)
		return statuscode.StatusEINVAL
	}
	return statuscode.Request(b.dev.Enroll(hat, gid, timeoutSec))
}

// PostEnroll ends the enrollment session.
func (b *Bridge) PostEnroll() statuscode.RequestStatus {
	return statuscode.Request(b.dev.PostEnroll())
}

// GetAuthenticatorID returns the driver's current authenticator
// identity.
func (b *Bridge) GetAuthenticatorID() (uint64, error) {
	return b.dev.GetAuthenticatorID()
}

// Cancel aborts the capture operation in flight.
func (b *Bridge) Cancel() statuscode.RequestStatus {
	return statuscode.Request(b.dev.Cancel())
}

// Enumerate walks the enrolled templates; results arrive as events.
func (b *Bridge) Enumerate() statuscode.RequestStatus {
	return statuscode.Request(b.dev.Enumerate())
}

// Remove deletes a template, or a whole group when fid is zero.
func (b *Bridge) Remove(gid uint32, fid uint32) statuscode.RequestStatus {
	return statuscode.Request(b.dev.Remove(gid, fid))
}

// SetActiveGroup points the driver at the template store for gid. The
// store path must be sane and writable before the driver hears about
// it.
func (b *Bridge) SetActiveGroup(gid uint32, path string) statuscode.RequestStatus {
	if len(path) == 0 || len(path) >= unix.PathMax {
		hallog.Error("bad fingerprint store path length: %d", len(path))
		return statuscode.StatusEINVAL
	}
	if err := unix.Access(path, unix.W_OK); err != nil {
		hallog.Error("fingerprint store path %s not writable: %v", path, err)
		return statuscode.StatusEINVAL
	}
	return statuscode.Request(b.dev.SetActiveGroup(gid, path))
}

// Authenticate starts an authentication attempt bound to operationID.
func (b *Bridge) Authenticate(operationID uint64, gid uint32) statuscode.RequestStatus {
	return statuscode.Request(b.dev.Authenticate(operationID, gid))
}

// IsUdfps reports whether the sensor sits under the display.
func (b *Bridge) IsUdfps(_ uint32) bool {
	return b.fod
}

// OnFingerDown hears touch coordinates from the display stack. The
// driver learns about touches through the fod_ui attribute instead,
// so nothing forwards from here.
func (b *Bridge) OnFingerDown(_, _ uint32, _, _ float32) {}

// OnFingerUp is the matching release notification.
func (b *Bridge) OnFingerUp() {}

// ExtCmd forwards a vendor extension command to the driver.
func (b *Bridge) ExtCmd(cmd int32, param int32) (int32, error) {
	return b.dev.ExtCmd(cmd, param)
}

// Close shuts the driver down. Problems are logged and teardown
// completes regardless.
func (b *Bridge) Close() {
	if b.dev == nil {
		hallog.Error("no valid fingerprint device on close")
		return
	}
	if err := b.dev.Close(); err != nil {
		hallog.Error("can't close fingerprint device: %v", err)
	}
	b.dev = nil
}
