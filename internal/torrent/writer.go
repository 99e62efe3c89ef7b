package torrent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	writeChunkSize = 256 * KiB
	lockRetryDelay = 50 * time.Millisecond
)

// WriteFile stores data at path. The bytes go to a temporary file in the
// same directory which is renamed over path only after a successful sync, so
// path never holds a truncated torrent. A lock on "<path>.lock" keeps two
// writers from racing on the same output. The lock file is left in place;
// deleting it would let a waiting writer lock an unlinked inode.
func WriteFile(ctx context.Context, path string, data []byte) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: lock %s: %w", ErrIO, path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is locked by another writer", ErrIO, path)
	}
	defer func() { _ = lock.Unlock() }()

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()

	if err := writeAll(ctx, tmp, data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func writeAll(ctx context.Context, f *os.File, data []byte) error {
	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(len(data), writeChunkSize)
		if _, err := f.Write(data[:n]); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		data = data[n:]
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
