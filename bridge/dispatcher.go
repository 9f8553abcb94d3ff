package bridge

import (
	"sync"

	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sensor"
	"github.com/veridianlabs/fpbridged/statuscode"
)

// ClientCallback receives translated sensor events. One client is
// registered at a time; each method's return value reports whether
// delivery reached the client.
type ClientCallback interface {
	OnError(deviceID uint64, err statuscode.Error, vendorCode int32) error
	OnAcquired(deviceID uint64, info statuscode.AcquiredInfo, vendorCode int32) error
	OnEnrollResult(deviceID uint64, fingerID, groupID, samplesRemaining uint32) error
	OnRemoved(deviceID uint64, fingerID, groupID, remaining uint32) error
	OnAuthenticated(deviceID uint64, fingerID, groupID uint32, token []byte) error
	OnEnumerate(deviceID uint64, fingerID, groupID, remaining uint32) error
}

// Booster requests a transient performance bump after a successful
// authentication. Boost failures are logged, never propagated.
type Booster interface {
	SendAuthenticatedBoost() error
}

// dispatcher owns the client handle. One mutex serializes event
// delivery against handle replacement, so an in-flight event never
// sees a half-swapped client and events reach the client in driver
// emission order.
type dispatcher struct {
	mu    sync.Mutex
	cb    ClientCallback
	devID uint64
	power Booster
}

// setNotify installs the client and returns the device instance handle
// its events will carry.
func (d *dispatcher) setNotify(cb ClientCallback) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cb = cb
	return d.devID
}

// setDevice binds the dispatcher to the opened device instance.
func (d *dispatcher) setDevice(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devID = id
}

// handle is the sensor.Notify installed at open time. Drivers invoke
// it from their own goroutines.
func (d *dispatcher) handle(ev sensor.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cb == nil {
		hallog.Anomaly("dropping %T from fingerprint driver, no client registered", ev)
		return
	}

	switch ev := ev.(type) {
	case sensor.ErrorEvent:
		e, vendor := statuscode.VendorError(ev.Code)
		d.deliver("error", d.cb.OnError(d.devID, e, vendor))
	case sensor.AcquiredEvent:
		info, vendor := statuscode.VendorAcquired(ev.Code)
		d.deliver("acquired", d.cb.OnAcquired(d.devID, info, vendor))
	case sensor.EnrollEvent:
		d.deliver("enroll result", d.cb.OnEnrollResult(d.devID, ev.Finger.ID, ev.Finger.Group, ev.SamplesRemaining))
	case sensor.RemovedEvent:
		d.deliver("removed", d.cb.OnRemoved(d.devID, ev.Finger.ID, ev.Finger.Group, ev.Remaining))
	case sensor.AuthenticatedEvent:
		// A no-match never carries token bytes, whatever the driver
		// left in the message.
		token := ev.Token
		if ev.Finger.ID == 0 {
			token = nil
		}
		err := d.cb.OnAuthenticated(d.devID, ev.Finger.ID, ev.Finger.Group, token)
		d.deliver("authenticated", err)
		// The boost fires only for a real match the client heard about.
		if ev.Finger.ID != 0 && err == nil {
			d.boost()
		}
	case sensor.EnumeratedEvent:
		d.deliver("enumerate", d.cb.OnEnumerate(d.devID, ev.Finger.ID, ev.Finger.Group, ev.Remaining))
	default:
		hallog.Anomaly("unhandled event %T from fingerprint driver", ev)
	}
}

func (d *dispatcher) deliver(kind string, err error) {
	if err != nil {
		hallog.Error("failed to invoke fingerprint client %s callback: %v", kind, err)
	}
}

func (d *dispatcher) boost() {
	if d.power == nil {
		return
	}
	if err := d.power.SendAuthenticatedBoost(); err != nil {
		hallog.Warn("authentication boost: %v", err)
	}
}
