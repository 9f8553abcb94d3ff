// Package virtualfp is an in-memory fingerprint driver for development
// machines and tests. It honors the full driver contract with a
// template table behind it; the Touch methods stand in for a finger on
// the sensor.
package virtualfp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sensor"
)

// Class is the registry name of the virtual driver.
const Class = "virtual"

// SamplesPerEnroll is how many touches complete an enrollment.
const SamplesPerEnroll = 3

// RegisterModule makes the virtual driver available to discovery.
func RegisterModule() {
	sensor.Register(Class, func() (sensor.Device, error) {
		return New(), nil
	})
}

// Device implements sensor.Device entirely in memory.
type Device struct {
	mu        sync.Mutex
	notify    sensor.Notify
	group     uint32
	templates map[uint32]uint32 // fid -> gid
	nextFID   uint32
	authID    uint64
	challenge uint64

	enrolling    bool
	enrollFID    uint32
	enrollGroup  uint32
	samplesTaken uint32

	authenticating bool
	operationID    uint64

	closed bool
}

// New returns an empty virtual device.
func New() *Device {
	return &Device{
		templates: map[uint32]uint32{},
		nextFID:   1,
		authID:    randomU64(),
	}
}

func randomU64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		hallog.Error("virtual sensor entropy: %v", err)
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Version reports the driver interface version.
func (d *Device) Version() uint16 { return sensor.APIVersion21 }

// SetNotify installs the event sink. Events may follow immediately.
func (d *Device) SetNotify(fn sensor.Notify) error {
	if fn == nil {
		return unix.EINVAL
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notify = fn
	return nil
}

// PreEnroll mints the challenge an enrollment token must answer.
func (d *Device) PreEnroll() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.challenge = randomU64()
	return d.challenge, nil
}

// Enroll opens an enrollment session. The token must follow a
// PreEnroll; a real driver would verify its HMAC, the virtual one only
// insists the challenge exists.
func (d *Device) Enroll(hat []byte, gid uint32, timeoutSec uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return unix.EIO
	}
	if len(hat) != sensor.AuthTokenSize {
		return unix.EINVAL
	}
	if d.challenge == 0 {
		return unix.EACCES
	}
	d.enrolling = true
	d.enrollFID = d.nextFID
	d.enrollGroup = gid
	d.samplesTaken = 0
	return nil
}

// PostEnroll closes the enrollment session and burns the challenge.
func (d *Device) PostEnroll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.challenge = 0
	d.enrolling = false
	return nil
}

// GetAuthenticatorID reports the identity bound to the template set.
func (d *Device) GetAuthenticatorID() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.authID, nil
}

// Cancel aborts whatever capture is in flight. The client hears a
// canceled error, matching what the hardware drivers do.
func (d *Device) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrolling = false
	d.authenticating = false
	d.emit(sensor.ErrorEvent{Code: sensor.ErrorCanceled})
	return nil
}

// Enumerate reports every template in the active group as events. An
// empty group reports a single zero entry.
func (d *Device) Enumerate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return unix.EIO
	}
	var fids []uint32
	for fid, gid := range d.templates {
		if gid == d.group {
			fids = append(fids, fid)
		}
	}
	if len(fids) == 0 {
		d.emit(sensor.EnumeratedEvent{Finger: sensor.Finger{ID: 0, Group: d.group}, Remaining: 0})
		return nil
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
	for i, fid := range fids {
		d.emit(sensor.EnumeratedEvent{
			Finger:    sensor.Finger{ID: fid, Group: d.group},
			Remaining: uint32(len(fids) - 1 - i),
		})
	}
	return nil
}

// Remove deletes one template, or every template in gid when fid is
// zero. Each removal is reported as an event.
func (d *Device) Remove(gid uint32, fid uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if fid == 0 {
		var fids []uint32
		for f, g := range d.templates {
			if g == gid {
				fids = append(fids, f)
			}
		}
		if len(fids) == 0 {
			return unix.ENOENT
		}
		sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
		for i, f := range fids {
			delete(d.templates, f)
			d.emit(sensor.RemovedEvent{
				Finger:    sensor.Finger{ID: f, Group: gid},
				Remaining: uint32(len(fids) - 1 - i),
			})
		}
		return nil
	}
	if g, ok := d.templates[fid]; !ok || g != gid {
		return unix.ENOENT
	}
	delete(d.templates, fid)
	d.emit(sensor.RemovedEvent{Finger: sensor.Finger{ID: fid, Group: gid}, Remaining: d.remaining(gid)})
	return nil
}

// SetActiveGroup selects the template group. The store path is
// meaningless for an in-memory table.
func (d *Device) SetActiveGroup(gid uint32, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.group = gid
	return nil
}

// Authenticate opens an authentication session bound to operationID.
func (d *Device) Authenticate(operationID uint64, gid uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return unix.EIO
	}
	d.group = gid
	d.authenticating = true
	d.operationID = operationID
	return nil
}

// ExtCmd acknowledges vendor extension commands. The virtual sensor
// has no illumination hardware, so it only records the request in the
// debug log.
func (d *Device) ExtCmd(cmd int32, param int32) (int32, error) {
	hallog.Debug("virtual sensor extension command %d param %d", cmd, param)
	return 0, nil
}

// Close shuts the device. Further sessions fail, a second Close is
// harmless.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// TouchEnroll simulates one finger press during an enrollment session.
// The finished template joins the table on the final sample.
func (d *Device) TouchEnroll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enrolling {
		return fmt.Errorf("virtualfp: no enrollment in progress")
	}
	d.samplesTaken++
	remaining := uint32(SamplesPerEnroll) - d.samplesTaken
	d.emit(sensor.AcquiredEvent{Code: sensor.AcquiredGood})
	d.emit(sensor.EnrollEvent{
		Finger:           sensor.Finger{ID: d.enrollFID, Group: d.enrollGroup},
		SamplesRemaining: remaining,
	})
	if remaining == 0 {
		d.templates[d.enrollFID] = d.enrollGroup
		d.nextFID++
		d.enrolling = false
	}
	return nil
}

// TouchMatch simulates a finger press that matches fid during an
// authentication session.
func (d *Device) TouchMatch(fid uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.authenticating {
		return fmt.Errorf("virtualfp: no authentication in progress")
	}
	gid, ok := d.templates[fid]
	if !ok || gid != d.group {
		return fmt.Errorf("virtualfp: no template %d in group %d", fid, d.group)
	}
	d.authenticating = false
	d.emit(sensor.AcquiredEvent{Code: sensor.AcquiredGood})
	d.emit(sensor.AuthenticatedEvent{
		Finger: sensor.Finger{ID: fid, Group: gid},
		Token:  d.mintToken(),
	})
	return nil
}

// TouchNoMatch simulates a finger press no template matches. The
// session stays open, as on hardware.
func (d *Device) TouchNoMatch() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.authenticating {
		return fmt.Errorf("virtualfp: no authentication in progress")
	}
	d.emit(sensor.AcquiredEvent{Code: sensor.AcquiredGood})
	d.emit(sensor.AuthenticatedEvent{Finger: sensor.Finger{ID: 0, Group: d.group}})
	return nil
}

// emit hands an event to the registered sink. Callers hold mu.
func (d *Device) emit(ev sensor.Event) {
	if d.notify == nil {
		return
	}
	d.notify(ev)
}

func (d *Device) remaining(gid uint32) uint32 {
	var n uint32
	for _, g := range d.templates {
		if g == gid {
			n++
		}
	}
	return n
}

// mintToken builds a hardware authenticator token: version, challenge,
// user, authenticator id, type and timestamp, then a MAC a real secure
// element would compute. The type and timestamp fields travel in
// network order. Callers hold mu.
func (d *Device) mintToken() []byte {
	token := make([]byte, sensor.AuthTokenSize)
	token[0] = 0
	binary.LittleEndian.PutUint64(token[1:9], d.operationID)
	binary.LittleEndian.PutUint64(token[9:17], uint64(d.group))
	binary.LittleEndian.PutUint64(token[17:25], d.authID)
	binary.BigEndian.PutUint32(token[25:29], 2) // fingerprint authenticator
	binary.BigEndian.PutUint64(token[29:37], uint64(time.Now().Unix()))
	if _, err := rand.Read(token[37:]); err != nil {
		hallog.Error("virtual sensor token entropy: %v", err)
	}
	return token
}
