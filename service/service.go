// Package service publishes the bridge on the D-Bus system bus: the
// operation surface as methods on one object, the event stream as
// signals from it. The signal relay is registered as the bridge's
// client, so a failed emission is a failed delivery in the
// dispatcher's eyes.
package service

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/veridianlabs/fpbridged/bridge"
	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/statuscode"
)

const (
	objectPath = dbus.ObjectPath("/io/veridian/Fingerprint")
	iface      = "io.veridian.Fingerprint"
)

// Service owns the bus connection, the claimed name and the exported
// object.
type Service struct {
	conn    *dbus.Conn
	busName string
}

// Export claims busName on the system bus, exports the bridge there
// and registers the signal relay as the bridge's client. Events start
// flowing before Export returns.
func Export(br *bridge.Bridge, busName string) (*Service, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus err: %w", err)
	}
	if err := conn.Export(&object{br: br}, objectPath, iface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export %s err: %w", iface, err)
	}
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s err: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	deviceID := br.SetNotify(&signalRelay{conn: conn})
	hallog.Info("fingerprint bridge up on %s, device %d", busName, deviceID)
	return &Service{conn: conn, busName: busName}, nil
}

// Close releases the bus name and the connection.
func (s *Service) Close() {
	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		hallog.Warn("release %s: %v", s.busName, err)
	}
	if err := s.conn.Close(); err != nil {
		hallog.Warn("close bus connection: %v", err)
	}
}

// object is the exported method surface. Protocol statuses travel as
// int32; hard driver failures become D-Bus errors.
type object struct {
	br *bridge.Bridge
}

func (o *object) PreEnroll() (uint64, *dbus.Error) {
	challenge, err := o.br.PreEnroll()
	if err != nil {
		hallog.Error("pre-enroll: %v", err)
		return 0, dbus.MakeFailedError(err)
	}
	return challenge, nil
}

func (o *object) Enroll(hat []byte, gid uint32, timeoutSec uint32) (int32, *dbus.Error) {
	return int32(o.br.Enroll(hat, gid, timeoutSec)), nil
}

func (o *object) PostEnroll() (int32, *dbus.Error) {
	return int32(o.br.PostEnroll()), nil
}

func (o *object) GetAuthenticatorID() (uint64, *dbus.Error) {
	id, err := o.br.GetAuthenticatorID()
	if err != nil {
		hallog.Error("authenticator id: %v", err)
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

func (o *object) Cancel() (int32, *dbus.Error) {
	return int32(o.br.Cancel()), nil
}

func (o *object) Enumerate() (int32, *dbus.Error) {
	return int32(o.br.Enumerate()), nil
}

func (o *object) Remove(gid uint32, fid uint32) (int32, *dbus.Error) {
	return int32(o.br.Remove(gid, fid)), nil
}

func (o *object) SetActiveGroup(gid uint32, path string) (int32, *dbus.Error) {
	return int32(o.br.SetActiveGroup(gid, path)), nil
}

func (o *object) Authenticate(operationID uint64, gid uint32) (int32, *dbus.Error) {
	return int32(o.br.Authenticate(operationID, gid)), nil
}

func (o *object) IsUdfps(sensorID uint32) (bool, *dbus.Error) {
	return o.br.IsUdfps(sensorID), nil
}

func (o *object) OnFingerDown(x uint32, y uint32, minor float64, major float64) *dbus.Error {
	o.br.OnFingerDown(x, y, float32(minor), float32(major))
	return nil
}

func (o *object) OnFingerUp() *dbus.Error {
	o.br.OnFingerUp()
	return nil
}

func (o *object) ExtCmd(cmd int32, param int32) (int32, *dbus.Error) {
	result, err := o.br.ExtCmd(cmd, param)
	if err != nil {
		hallog.Error("extension command %d: %v", cmd, err)
		return 0, dbus.MakeFailedError(err)
	}
	return result, nil
}

// signalRelay forwards translated events as bus signals.
type signalRelay struct {
	conn *dbus.Conn
}

func (r *signalRelay) OnError(deviceID uint64, errCode statuscode.Error, vendorCode int32) error {
	return r.conn.Emit(objectPath, iface+".Error", deviceID, int32(errCode), vendorCode)
}

func (r *signalRelay) OnAcquired(deviceID uint64, info statuscode.AcquiredInfo, vendorCode int32) error {
	return r.conn.Emit(objectPath, iface+".Acquired", deviceID, int32(info), vendorCode)
}

func (r *signalRelay) OnEnrollResult(deviceID uint64, fingerID, groupID, samplesRemaining uint32) error {
	return r.conn.Emit(objectPath, iface+".EnrollResult", deviceID, fingerID, groupID, samplesRemaining)
}

func (r *signalRelay) OnRemoved(deviceID uint64, fingerID, groupID, remaining uint32) error {
	return r.conn.Emit(objectPath, iface+".Removed", deviceID, fingerID, groupID, remaining)
}

func (r *signalRelay) OnAuthenticated(deviceID uint64, fingerID, groupID uint32, token []byte) error {
	return r.conn.Emit(objectPath, iface+".Authenticated", deviceID, fingerID, groupID, token)
}

func (r *signalRelay) OnEnumerate(deviceID uint64, fingerID, groupID, remaining uint32) error {
	return r.conn.Emit(objectPath, iface+".Enumerate", deviceID, fingerID, groupID, remaining)
}
