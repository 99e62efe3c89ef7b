package torrent

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.torrent")
	data := bytes.Repeat([]byte("d4:infoe"), 100000)

	require.NoError(t, WriteFile(context.Background(), path, data))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, []string{"out.torrent", "out.torrent.lock"}, dirNames(t, dir))
}

func TestWriteFile_LockFileReused(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.torrent")

	require.NoError(t, WriteFile(context.Background(), path, []byte("first")))
	require.FileExists(t, path+".lock")

	// A second writer takes the same lock file once the first is done.
	held := flock.New(path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, held.Unlock())

	require.NoError(t, WriteFile(context.Background(), path, []byte("second")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
	assert.Equal(t, []string{"out.torrent", "out.torrent.lock"}, dirNames(t, dir))
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.torrent")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	require.NoError(t, WriteFile(context.Background(), path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestWriteFile_CanceledLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.torrent")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteFile(ctx, path, []byte("data"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirNames(t, dir))
}

func TestWriteFile_CanceledKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.torrent")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, WriteFile(ctx, path, []byte("next")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.torrent")
	err := WriteFile(context.Background(), path, []byte("x"))
	assert.ErrorIs(t, err, ErrIO)
	assert.NoFileExists(t, path)
}

func TestWriteFile_WaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.torrent")
	held := flock.New(path + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = held.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*lockRetryDelay)
	defer cancel()

	err = WriteFile(ctx, path, []byte("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, path)
}
