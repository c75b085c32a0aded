package scan

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/r/node2.log",
		"/r/node1.log",
		"/r/sub/node3.log",
		"/r/log_expect.log",
		"/r/notes.txt",
		"/r/.hidden/node4.log",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	files, err := ScanRoot(fs, "/r")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.Equal(t, int64(1), f.Size)
	}
	assert.Equal(t, []string{"/r/node1.log", "/r/node2.log", "/r/sub/node3.log"}, paths)
}

func TestScanRootMissing(t *testing.T) {
	files, err := ScanRoot(afero.NewMemMapFs(), "/nope")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanRootConfiguredTrace(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/r/node1.log", "/r/run-trace.log", "/r/log_expect.log"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	files, err := ScanRoot(fs, "/r", "/results/run-trace.log")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/r/node1.log", files[0].Path)
}
