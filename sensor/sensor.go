// Package sensor defines the contract between the bridge and vendor
// fingerprint sensor drivers: the device interface, the event stream
// vocabulary, and the class registry discovery walks.
package sensor

const (
	// APIVersion21 is the driver interface version this bridge speaks.
	// A driver reporting anything else is skipped during discovery.
	APIVersion21 uint16 = 0x0201

	// AuthTokenSize is the length of the hardware authenticator token
	// blob consumed by Enroll and produced by authentication.
	AuthTokenSize = 69
)

// Module describes one driver candidate. Name is the class the driver
// registered under; FOD marks under-display sensors that need the
// display state watcher.
type Module struct {
	Name string `yaml:"name"`
	FOD  bool   `yaml:"fod"`
}

// Notify delivers asynchronous driver events. Drivers may invoke it
// from any goroutine from the moment SetNotify returns.
type Notify func(Event)

// Device is one opened sensor driver. Hardware failures are reported
// as unix.Errno values, possibly wrapped.
type Device interface {
	Version() uint16
	PreEnroll() (uint64, error)
	Enroll(hat []byte, gid uint32, timeoutSec uint32) error
	PostEnroll() error
	GetAuthenticatorID() (uint64, error)
	Cancel() error
	Enumerate() error
	Remove(gid uint32, fid uint32) error
	SetActiveGroup(gid uint32, path string) error
	Authenticate(operationID uint64, gid uint32) error
	ExtCmd(cmd int32, param int32) (int32, error)
	SetNotify(fn Notify) error
	Close() error
}
