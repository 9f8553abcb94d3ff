package fodwatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type cmdRecorder struct {
	cmds   []int32
	params []int32
	err    error
}

func (r *cmdRecorder) ExtCmd(cmd int32, param int32) (int32, error) {
	r.cmds = append(r.cmds, cmd)
	r.params = append(r.params, param)
	return 0, r.err
}

func newTestWatcher(t *testing.T, value string, dev Commander) *Watcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fod_ui")
	require.NoError(t, os.WriteFile(path, []byte(value), 0600))
	w, err := New(path, dev)
	require.NoError(t, err)
	t.Cleanup(func() { w.f.Close() })
	w.wait = func(int) error { return nil }
	return w
}

func TestStepPressedLightsPanel(t *testing.T) {
	rec := &cmdRecorder{}
	w := newTestWatcher(t, "1", rec)

	w.step()

	require.Len(t, rec.cmds, 1)
	assert.Equal(t, CommandNit, rec.cmds[0])
	assert.Equal(t, ParamNitFOD, rec.params[0])
}

func TestStepReleasedDimsPanel(t *testing.T) {
	rec := &cmdRecorder{}
	w := newTestWatcher(t, "0", rec)

	w.step()

	require.Len(t, rec.params, 1)
	assert.Equal(t, ParamNitNone, rec.params[0])
}

func TestStepRereadsFromStart(t *testing.T) {
	rec := &cmdRecorder{}
	w := newTestWatcher(t, "1", rec)

	w.step()
	w.step()

	assert.Equal(t, []int32{ParamNitFOD, ParamNitFOD}, rec.params,
		"every wake must read the value from offset zero")
}

func TestStepPollInterrupted(t *testing.T) {
	rec := &cmdRecorder{}
	w := newTestWatcher(t, "1", rec)
	w.wait = func(int) error { return unix.EINTR }

	w.step()

	assert.Empty(t, rec.cmds, "interrupted wait must not issue a command")
}

func TestStepSurvivesCommandFailure(t *testing.T) {
	rec := &cmdRecorder{err: unix.EIO}
	w := newTestWatcher(t, "1", rec)

	w.step()
	w.step()

	assert.Len(t, rec.cmds, 2, "a failing driver must not stop the loop")
}

func TestStepEmptyAttributeCountsAsReleased(t *testing.T) {
	rec := &cmdRecorder{}
	w := newTestWatcher(t, "", rec)

	w.step()

	require.Len(t, rec.params, 1)
	assert.Equal(t, ParamNitNone, rec.params[0])
}

func TestNewMissingAttribute(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), &cmdRecorder{})
	assert.Error(t, err)
}
