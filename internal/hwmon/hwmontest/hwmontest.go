// Package hwmontest builds in-memory thinkpad_acpi hwmon trees for tests.
package hwmontest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/luki/tpfancontrol/internal/hwmon"
)

// Dir is where NewTree places the fake device.
const Dir = "/sys/class/hwmon/hwmon4"

// FaultFs wraps an afero.Fs and injects errors for chosen paths. Reads of a
// faulted path open fine and fail on Read, which is how the kernel reports
// an absent thinkpad temperature channel. Opening a faulted path for writing
// fails immediately.
type FaultFs struct {
	afero.Fs

	mu     sync.Mutex
	faults map[string]error
}

// NewFaultFs wraps base.
func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{Fs: base, faults: make(map[string]error)}
}

// Fail makes every access to path fail with err.
func (f *FaultFs) Fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[path] = err
}

// Clear removes the fault on path.
func (f *FaultFs) Clear(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, path)
}

func (f *FaultFs) fault(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faults[path]
}

func (f *FaultFs) Open(name string) (afero.File, error) {
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	if fault := f.fault(name); fault != nil {
		return &faultFile{File: file, err: &os.PathError{Op: "read", Path: name, Err: fault}}, nil
	}
	return file, nil
}

func (f *FaultFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		if fault := f.fault(name); fault != nil {
			return nil, &os.PathError{Op: "open", Path: name, Err: fault}
		}
		return f.Fs.OpenFile(name, flag, perm)
	}
	if flag == os.O_RDONLY {
		return f.Open(name)
	}
	return f.Fs.OpenFile(name, flag, perm)
}

type faultFile struct {
	afero.File
	err error
}

func (f *faultFile) Read([]byte) (int, error) { return 0, f.err }

// Tree is a fake thinkpad_acpi device with the nodes the fan controller
// uses: name, pwm1_enable, pwm1, fan1_input and the driver's fan_watchdog.
type Tree struct {
	*FaultFs
	Device hwmon.Device
	t      testing.TB
}

// NewTree creates the device in a fresh MemMapFs. The fan starts in
// automatic mode at 0 RPM and no temperature channels exist yet.
func NewTree(t testing.TB) *Tree {
	t.Helper()
	fsys := NewFaultFs(afero.NewMemMapFs())
	tr := &Tree{
		FaultFs: fsys,
		Device:  hwmon.Device{Fs: fsys, Dir: Dir},
		t:       t,
	}
	tr.Set("name", hwmon.ThinkpadDriver)
	tr.Set("pwm1_enable", "2")
	tr.Set("pwm1", "0")
	tr.Set("fan1_input", "0")
	tr.Set("device/driver/fan_watchdog", "0")
	return tr
}

// Set writes value plus a trailing newline to the node name.
func (tr *Tree) Set(name, value string) {
	tr.t.Helper()
	path := filepath.Join(Dir, name)
	require.NoError(tr.t, tr.Fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, afero.WriteFile(tr.Fs, path, []byte(value+"\n"), 0o644))
}

// Get returns the content of node name without surrounding whitespace.
func (tr *Tree) Get(name string) string {
	tr.t.Helper()
	b, err := afero.ReadFile(tr.Fs, filepath.Join(Dir, name))
	require.NoError(tr.t, err)
	return strings.TrimSpace(string(b))
}

// SetTemps writes temp1_input..tempN_input in millidegrees Celsius.
func (tr *Tree) SetTemps(millis ...int) {
	tr.t.Helper()
	for i, m := range millis {
		tr.Set(fmt.Sprintf("temp%d_input", i+1), fmt.Sprint(m))
	}
}
