package sensor

import (
	"errors"
	"sync/atomic"

	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sysprop"
)

// ErrNoModule reports that no candidate driver could be opened.
var ErrNoModule = errors.New("sensor: no usable fingerprint module")

// PropVendor is the property recording which driver class won
// discovery.
const PropVendor = "persist.vendor.sys.fp.vendor"

var nextID uint64

// Opened is a successfully opened driver bound to its candidate
// descriptor and a process-unique instance handle.
type Opened struct {
	Device

	id     uint64
	module Module
}

// ID returns the instance handle clients use to correlate events.
func (o *Opened) ID() uint64 { return o.id }

// Module returns the candidate descriptor the device was opened from.
func (o *Opened) Module() Module { return o.module }

// OpenFirst walks candidates in order and returns the first driver
// that constructs, reports APIVersion21 and accepts the event
// callback. The winning class is persisted under PropVendor so the
// rest of the platform can see which sensor is in service. A driver
// may start emitting events the moment its SetNotify accepts fn.
func OpenFirst(candidates []Module, fn Notify, props *sysprop.Store) (*Opened, error) {
	for _, cand := range candidates {
		open, ok := lookup(cand.Name)
		if !ok {
			hallog.Error("can't open fingerprint module, class %s", cand.Name)
			continue
		}
		dev, err := open()
		if err != nil {
			hallog.Error("can't open fingerprint device, class %s: %v", cand.Name, err)
			continue
		}
		if v := dev.Version(); v != APIVersion21 {
			hallog.Error("unsupported fingerprint device version %#x, class %s", v, cand.Name)
			closeRejected(dev, cand.Name)
			continue
		}
		if err := dev.SetNotify(fn); err != nil {
			hallog.Error("can't register notify on fingerprint device, class %s: %v", cand.Name, err)
			closeRejected(dev, cand.Name)
			continue
		}
		if err := props.Set(PropVendor, cand.Name); err != nil {
			hallog.Warn("can't persist fingerprint vendor %s: %v", cand.Name, err)
		}
		hallog.Info("opened fingerprint device, class %s (fod=%v)", cand.Name, cand.FOD)
		return &Opened{Device: dev, id: atomic.AddUint64(&nextID, 1), module: cand}, nil
	}
	return nil, ErrNoModule
}

func closeRejected(dev Device, class string) {
	if err := dev.Close(); err != nil {
		hallog.Warn("closing rejected fingerprint device, class %s: %v", class, err)
	}
}
