// Package golden compares rendered documents against testdata/<name>.golden
// files. Run tests with -update to rewrite them from the current output.
package golden

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var Update = flag.Bool("update", false, "update golden files")

// TestdataDir returns the testdata directory next to the calling test file.
func TestdataDir(t testing.TB) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(1)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Read returns the named golden file with line endings normalized.
// A missing file reads as empty so a first -update run can create it.
func Read(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(path(t, dir, name)) //nolint:gosec // testdata path controlled by test
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	require.NoError(t, err, "reading golden %s", name)
	return strings.ReplaceAll(string(data), "\r\n", "\n")
}

func Write(t testing.TB, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(path(t, dir, name), []byte(content), 0o600), "writing golden %s", name)
}

// Assert compares got with the named golden file, or rewrites the file
// under -update.
func Assert(t testing.TB, dir, name, got string) {
	t.Helper()
	if *Update {
		Write(t, dir, name, got)
		return
	}
	assert.Equal(t, Read(t, dir, name), got, "golden %s differs; rerun with -update if the change is intended", name)
}

func path(t testing.TB, dir, name string) string {
	t.Helper()
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		require.FailNow(t, "invalid golden name", "%q", name)
	}
	return filepath.Join(dir, name+".golden")
}
