package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Root markers.
const (
	SystemDir  = ".quire"
	ConfigFile = "quire.yaml"
)

// ErrRootNotFound is returned when no directory above the start holds a
// root marker.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a directory holding a .quire
// directory or a quire.yaml file and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w above %s", ErrRootNotFound, abs)
}

// ResolveRoot returns the root found from startDir, or the user's home
// directory when there is none.
func ResolveRoot(startDir string) (string, error) {
	root, err := FindRoot(startDir)
	if err == nil {
		return root, nil
	}
	home, herr := os.UserHomeDir()
	if herr != nil {
		return "", errors.Join(err, herr)
	}
	return home, nil
}

// DataDir is where the storage adapters keep their files under root.
func DataDir(root string) string {
	return filepath.Join(root, SystemDir)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
