package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// TempFilePrefix marks in-flight writes. Such files never carry Extension,
// so they are invisible to Get, Keys and Watch.
const TempFilePrefix = "quire-tmp-"

const filePerm = 0o644

// replaceFile stores value under dir/name. The value is staged in a temp file
// in dir, synced, renamed over the target, and the directory entry is synced
// so the new name survives a crash.
func replaceFile(dir, name, value string) error {
	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	staged := tmp.Name()
	defer os.Remove(staged)

	_, err = io.WriteString(tmp, value)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if err := os.Chmod(staged, filePerm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}

	if err := os.Rename(staged, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	return syncDir(dir)
}

// removeFile deletes dir/name and syncs the directory. A missing file is not
// an error.
func removeFile(dir, name string) error {
	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	// Directories cannot be opened for sync on Windows; rename is durable there.
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", dir, err)
	}
	return nil
}

// sweepTemp removes temp files left behind by writes interrupted by a crash
// and returns how many it removed.
func sweepTemp(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempFilePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
