// SPDX-License-Identifier: Apache-2.0

package detect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kusari-oss/piper/internal/core/models"
)

// CheckRoot verifies that root exists and is a readable directory
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &models.FilesystemError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return &models.FilesystemError{Path: root, Err: fmt.Errorf("not a directory")}
	}
	if _, err := os.ReadDir(root); err != nil {
		return &models.FilesystemError{Path: root, Err: err}
	}
	return nil
}

// ScanSignals reports which marker files exist directly under root
func ScanSignals(root string) (map[string][]string, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	return scanSignals(os.DirFS(root), root)
}

// ScanSignalsFS reports which marker files exist at the top level of fsys.
// Every known tag is present in the result, with an empty list when nothing matched.
func ScanSignalsFS(fsys fs.FS) (map[string][]string, error) {
	return scanSignals(fsys, "")
}

// scanSignals reports marker stat failures at filepath.Join(base, marker)
func scanSignals(fsys fs.FS, base string) (map[string][]string, error) {
	found := make(map[string][]string, len(signalTable))

	for _, signal := range signalTable {
		files := []string{}
		for _, marker := range signal.Markers {
			ok, err := exists(fsys, marker)
			if err != nil {
				return nil, &models.FilesystemError{Path: filepath.Join(base, marker), Err: err}
			}
			if ok {
				files = append(files, marker)
			}
		}
		found[signal.Tag] = files
	}

	return found, nil
}

func exists(fsys fs.FS, name string) (bool, error) {
	_, err := fs.Stat(fsys, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
