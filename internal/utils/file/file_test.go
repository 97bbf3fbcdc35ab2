package file_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/utils/file"
)

func TestCopyFile(t *testing.T) {
	tests := map[string]struct {
		content []byte
		holeAt  int64
		perm    os.FileMode
	}{
		"An empty file should be copied.": {
			content: []byte{},
			perm:    0o644,
		},

		"A regular file should be copied with its permissions.": {
			content: []byte("[mysqld]\nport=3310\n"),
			perm:    0o600,
		},

		"A file with a hole should keep its size and data.": {
			content: []byte("tail"),
			holeAt:  4 * 1024 * 1024,
			perm:    0o640,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			src := filepath.Join(dir, "src")
			dst := filepath.Join(dir, "dst")

			f, err := os.OpenFile(src, os.O_CREATE|os.O_WRONLY, test.perm)
			require.NoError(err)
			_, err = f.WriteAt(test.content, test.holeAt)
			require.NoError(err)
			require.NoError(f.Close())
			require.NoError(os.Chmod(src, test.perm))

			err = file.CopyFile(context.Background(), src, dst)
			require.NoError(err)

			exp, err := os.ReadFile(src)
			require.NoError(err)
			got, err := os.ReadFile(dst)
			require.NoError(err)
			assert.Equal(exp, got)

			if runtime.GOOS != "windows" {
				info, err := os.Stat(dst)
				require.NoError(err)
				assert.Equal(test.perm, info.Mode().Perm())
			}
		})
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := file.CopyFile(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, "dst"))
}

func TestDirSizeStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sandboxdata"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my.cnf"), []byte("[mysqld]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sandboxdata", "ibdata1"), make([]byte, 4096), 0o644))

	virtual, allocated, err := file.DirSizeStats(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(9+4096), virtual)
	assert.GreaterOrEqual(t, allocated, int64(0))

	_, _, err = file.DirSizeStats(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
