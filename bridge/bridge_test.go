package bridge

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/veridianlabs/fpbridged/sensor"
	"github.com/veridianlabs/fpbridged/statuscode"
	"github.com/veridianlabs/fpbridged/sysprop"
)

// scriptDevice returns scripted results and records what the facade
// forwarded to it.
type scriptDevice struct {
	err       error
	challenge uint64
	authID    uint64
	extResult int32
	closeErr  error

	notify    sensor.Notify
	lastOp    string
	lastGID   uint32
	lastFID   uint32
	lastPath  string
	lastOpID  uint64
	lastCmd   int32
	lastParam int32
	closed    bool
}

func (s *scriptDevice) Version() uint16 { return sensor.APIVersion21 }

func (s *scriptDevice) PreEnroll() (uint64, error) {
	s.lastOp = "pre_enroll"
	return s.challenge, s.err
}

func (s *scriptDevice) Enroll(_ []byte, gid uint32, _ uint32) error {
	s.lastOp = "enroll"
	s.lastGID = gid
	return s.err
}

func (s *scriptDevice) PostEnroll() error {
	s.lastOp = "post_enroll"
	return s.err
}

func (s *scriptDevice) GetAuthenticatorID() (uint64, error) {
	s.lastOp = "get_authenticator_id"
	return s.authID, s.err
}

func (s *scriptDevice) Cancel() error {
	s.lastOp = "cancel"
	return s.err
}

func (s *scriptDevice) Enumerate() error {
	s.lastOp = "enumerate"
	return s.err
}

func (s *scriptDevice) Remove(gid uint32, fid uint32) error {
	s.lastOp = "remove"
	s.lastGID = gid
	s.lastFID = fid
	return s.err
}

func (s *scriptDevice) SetActiveGroup(gid uint32, path string) error {
	s.lastOp = "set_active_group"
	s.lastGID = gid
	s.lastPath = path
	return s.err
}

func (s *scriptDevice) Authenticate(opID uint64, gid uint32) error {
	s.lastOp = "authenticate"
	s.lastOpID = opID
	s.lastGID = gid
	return s.err
}

func (s *scriptDevice) ExtCmd(cmd int32, param int32) (int32, error) {
	s.lastOp = "ext_cmd"
	s.lastCmd = cmd
	s.lastParam = param
	return s.extResult, s.err
}

func (s *scriptDevice) SetNotify(fn sensor.Notify) error {
	s.notify = fn
	return nil
}

func (s *scriptDevice) Close() error {
	s.closed = true
	return s.closeErr
}

func testClass(t *testing.T) string {
	return "bridge_" + strings.ReplaceAll(t.Name(), "/", "_")
}

func newTestBridge(t *testing.T, dev sensor.Device, fod bool, power Booster) (*Bridge, *sysprop.Store) {
	t.Helper()
	class := testClass(t)
	sensor.Register(class, func() (sensor.Device, error) { return dev, nil })
	props, err := sysprop.Open(filepath.Join(t.TempDir(), "properties.yaml"))
	require.NoError(t, err)
	br, err := New(Params{
		Modules: []sensor.Module{{Name: class, FOD: fod}},
		FODPath: filepath.Join(t.TempDir(), "fod_ui"),
		Props:   props,
		Power:   power,
	})
	require.NoError(t, err)
	return br, props
}

func TestNewSkipsBrokenDriver(t *testing.T) {
	broken := testClass(t) + "_broken"
	sensor.Register(broken, func() (sensor.Device, error) { return nil, unix.EIO })
	working := testClass(t) + "_ok"
	dev := &scriptDevice{}
	sensor.Register(working, func() (sensor.Device, error) { return dev, nil })

	props, err := sysprop.Open(filepath.Join(t.TempDir(), "properties.yaml"))
	require.NoError(t, err)
	br, err := New(Params{
		Modules: []sensor.Module{{Name: broken}, {Name: working}},
		FODPath: filepath.Join(t.TempDir(), "fod_ui"),
		Props:   props,
	})
	require.NoError(t, err)
	defer br.Close()

	assert.Equal(t, working, props.Get(sensor.PropVendor))
	assert.Empty(t, props.Get(PropFOD))
	assert.False(t, br.IsUdfps(0))
}

func TestNewNoUsableDriver(t *testing.T) {
	props, err := sysprop.Open(filepath.Join(t.TempDir(), "properties.yaml"))
	require.NoError(t, err)

	_, err = New(Params{
		Modules: []sensor.Module{{Name: "bridge_never_registered"}},
		Props:   props,
	})
	assert.ErrorIs(t, err, sensor.ErrNoModule)
}

func TestNewFODAdvertisesCapability(t *testing.T) {
	br, props := newTestBridge(t, &scriptDevice{}, true, nil)
	defer br.Close()

	assert.Equal(t, "true", props.Get(PropFOD))
	assert.True(t, br.IsUdfps(0))
}

func TestSetActiveGroupValidation(t *testing.T) {
	dev := &scriptDevice{}
	br, _ := newTestBridge(t, dev, false, nil)
	defer br.Close()

	assert.Equal(t, statuscode.StatusEINVAL, br.SetActiveGroup(1, ""))
	assert.Equal(t, statuscode.StatusEINVAL, br.SetActiveGroup(1, strings.Repeat("p", unix.PathMax)))
	assert.Equal(t, statuscode.StatusEINVAL, br.SetActiveGroup(1, filepath.Join(t.TempDir(), "missing")))
	assert.Empty(t, dev.lastOp, "rejected arguments never reach the driver")

	dir := t.TempDir()
	assert.Equal(t, statuscode.StatusOK, br.SetActiveGroup(1, dir))
	assert.Equal(t, "set_active_group", dev.lastOp)
	assert.Equal(t, dir, dev.lastPath)
	assert.Equal(t, uint32(1), dev.lastGID)
}

func TestEnrollTokenValidation(t *testing.T) {
	dev := &scriptDevice{}
	br, _ := newTestBridge(t, dev, false, nil)
	defer br.Close()

	assert.Equal(t, statuscode.StatusEINVAL, br.Enroll([]byte{1, 2, 3}, 1, 60))
	assert.Equal(t, statuscode.StatusEINVAL, br.Enroll(nil, 1, 60))
	assert.Empty(t, dev.lastOp)

	hat := make([]byte, sensor.AuthTokenSize)
	assert.Equal(t, statuscode.StatusOK, br.Enroll(hat, 5, 60))
	assert.Equal(t, "enroll", dev.lastOp)
	assert.Equal(t, uint32(5), dev.lastGID)
}

func TestStatusTranslation(t *testing.T) {
	dev := &scriptDevice{err: unix.EBUSY}
	br, _ := newTestBridge(t, dev, false, nil)
	defer br.Close()

	assert.Equal(t, statuscode.StatusEBUSY, br.Cancel())
	assert.Equal(t, statuscode.StatusEBUSY, br.Enumerate())
	assert.Equal(t, statuscode.StatusEBUSY, br.Remove(1, 2))
	assert.Equal(t, statuscode.StatusEBUSY, br.Authenticate(77, 1))
	assert.Equal(t, statuscode.StatusEBUSY, br.PostEnroll())

	dev.err = nil
	assert.Equal(t, statuscode.StatusOK, br.Cancel())
	assert.Equal(t, statuscode.StatusOK, br.Authenticate(88, 2))
	assert.Equal(t, uint64(88), dev.lastOpID)
	assert.Equal(t, uint32(2), dev.lastGID)
}

func TestPassthroughValues(t *testing.T) {
	dev := &scriptDevice{challenge: 0xfeed, authID: 0xbeef, extResult: 7}
	br, _ := newTestBridge(t, dev, false, nil)
	defer br.Close()

	challenge, err := br.PreEnroll()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xfeed), challenge)

	id, err := br.GetAuthenticatorID()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xbeef), id)

	result, err := br.ExtCmd(10, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(7), result)
	assert.Equal(t, int32(10), dev.lastCmd)
	assert.Equal(t, int32(1), dev.lastParam)
}

func TestDriverEventsReachClient(t *testing.T) {
	dev := &scriptDevice{}
	power := &countBooster{}
	br, _ := newTestBridge(t, dev, false, power)
	defer br.Close()

	cb := &recorderCallback{}
	deviceID := br.SetNotify(cb)
	assert.NotZero(t, deviceID)
	require.NotNil(t, dev.notify, "discovery must install the dispatcher callback")

	token := make([]byte, sensor.AuthTokenSize)
	dev.notify(sensor.AuthenticatedEvent{Finger: sensor.Finger{ID: 6, Group: 2}, Token: token})

	events := cb.all()
	require.Len(t, events, 1)
	assert.Equal(t, "authenticated", events[0].kind)
	assert.Equal(t, deviceID, events[0].deviceID)
	assert.Equal(t, uint32(6), events[0].finger)
	assert.Equal(t, int32(1), power.boosts())
}

func TestCloseSurvivesDriverError(t *testing.T) {
	dev := &scriptDevice{closeErr: unix.EBUSY}
	br, _ := newTestBridge(t, dev, false, nil)

	br.Close()
	assert.True(t, dev.closed)
	br.Close()
}

func TestOnFingerHooksAreInert(t *testing.T) {
	dev := &scriptDevice{}
	br, _ := newTestBridge(t, dev, true, nil)
	defer br.Close()

	br.OnFingerDown(12, 800, 4.2, 6.9)
	br.OnFingerUp()
	assert.Empty(t, dev.lastOp)
}
