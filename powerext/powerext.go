// Package powerext talks to the platform power-extension service over
// the system bus. The service grants transient performance boosts; the
// bridge requests one when an authentication succeeds so the unlock
// path renders without jank. Losing the boost is never an error worth
// failing authentication over, so callers log and move on.
package powerext

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/veridianlabs/fpbridged/hallog"
)

const (
	powerIface = "io.veridian.PowerExt"
	peerIface  = "org.freedesktop.DBus.Peer"
)

var (
	// ErrNotConnected reports that the service could not be reached.
	// The next call resolves it again.
	ErrNotConnected = errors.New("powerext: service not connected")

	// ErrUnsupported reports that the service does not know the boost
	// hint. The answer is definitive.
	ErrUnsupported = errors.New("powerext: boost not supported")
)

// transactionErrors are the D-Bus failures that mean the service is
// gone rather than unhappy with the request.
var transactionErrors = map[string]bool{
	"org.freedesktop.DBus.Error.NoReply":        true,
	"org.freedesktop.DBus.Error.Disconnected":   true,
	"org.freedesktop.DBus.Error.ServiceUnknown": true,
	"org.freedesktop.DBus.Error.NameHasNoOwner": true,
	"org.freedesktop.DBus.Error.Timeout":        true,
}

// Client is a lazy handle on the power-extension service. It resolves
// the service on first use and heals by resolving again after the
// service dies; there is no background reconnect loop.
type Client struct {
	busName    string
	objectPath dbus.ObjectPath
	hint       string
	durationMS int32

	mu             sync.Mutex
	obj            dbus.BusObject
	supportChecked bool
	supported      bool

	resolve func() (dbus.BusObject, error)
}

// New returns an unconnected client for the service owning busName.
// hint and durationMS tune the boost sent after authentications.
func New(busName string, objectPath dbus.ObjectPath, hint string, durationMS int32) *Client {
	c := &Client{
		busName:    busName,
		objectPath: objectPath,
		hint:       hint,
		durationMS: durationMS,
	}
	c.resolve = c.resolveSystemBus
	return c
}

// resolveSystemBus takes the service object from the shared system bus
// connection and pings it, so a dead or absent service fails here
// rather than on the first hint.
func (c *Client) resolveSystemBus() (dbus.BusObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus err: %w", err)
	}
	obj := conn.Object(c.busName, c.objectPath)
	if call := obj.Call(peerIface+".Ping", 0); call.Err != nil {
		return nil, fmt.Errorf("ping %s err: %w", c.busName, call.Err)
	}
	return obj, nil
}

// ensureConnected resolves the service when no object is cached.
// Callers hold mu.
func (c *Client) ensureConnected() error {
	if c.obj != nil {
		return nil
	}
	obj, err := c.resolve()
	if err != nil {
		hallog.Warn("cannot connect power extension service: %v", err)
		return ErrNotConnected
	}
	hallog.Info("connected power extension service %s", c.busName)
	c.obj = obj
	return nil
}

// remoteFailure classifies a failed call. A transaction-class failure
// means the service died mid-call: the cached object is dropped so the
// next use resolves a fresh instance. Anything else keeps the
// connection and surfaces as a plain error.
func (c *Client) remoteFailure(method string, err error) error {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && transactionErrors[dbusErr.Name] {
		hallog.Warn("power extension %s transaction failed, dropping connection: %v", method, err)
		c.obj = nil
		return ErrNotConnected
	}
	return fmt.Errorf("powerext: %s: %w", method, err)
}

func (c *Client) checkSupport(hint string) error {
	if hint == "" {
		return fmt.Errorf("powerext: empty boost hint")
	}
	if err := c.ensureConnected(); err != nil {
		return err
	}
	call := c.obj.Call(powerIface+".IsBoostSupported", 0, hint)
	if call.Err != nil {
		return c.remoteFailure("IsBoostSupported", call.Err)
	}
	var supported bool
	if err := call.Store(&supported); err != nil {
		return fmt.Errorf("powerext: decode IsBoostSupported reply: %w", err)
	}
	if !supported {
		return ErrUnsupported
	}
	return nil
}

func (c *Client) sendBoost(hint string, durationMS int32) error {
	if hint == "" {
		return fmt.Errorf("powerext: empty boost hint")
	}
	if err := c.ensureConnected(); err != nil {
		return err
	}
	if call := c.obj.Call(powerIface+".SetBoost", 0, hint, durationMS); call.Err != nil {
		return c.remoteFailure("SetBoost", call.Err)
	}
	return nil
}

// CheckBoostSupport asks the service whether it knows hint.
func (c *Client) CheckBoostSupport(hint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkSupport(hint)
}

// SendBoost asks the service to apply hint for durationMS
// milliseconds.
func (c *Client) SendBoost(hint string, durationMS int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendBoost(hint, durationMS)
}

// SendAuthenticatedBoost requests the configured boost after a
// successful authentication. Once the service has answered the support
// question either way the answer sticks for the life of the process;
// an indeterminate check (connection trouble) is retried on the next
// authentication instead.
func (c *Client) SendAuthenticatedBoost() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.supportChecked {
		err := c.checkSupport(c.hint)
		switch {
		case err == nil:
			c.supportChecked = true
			c.supported = true
		case errors.Is(err, ErrUnsupported):
			c.supportChecked = true
			c.supported = false
		default:
			return err
		}
	}
	if !c.supported {
		return ErrUnsupported
	}
	return c.sendBoost(c.hint, c.durationMS)
}
