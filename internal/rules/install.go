// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"io/fs"

	"github.com/kusari-oss/piper/internal/core/models"
)

// InstallOptions tunes install command generation
type InstallOptions struct {
	// Python is the interpreter used to run pip. Defaults to python3.
	Python string
}

// nodeLockfiles in selection priority. package-lock.json and no lockfile both resolve to npm.
var nodeLockfiles = []string{"pnpm-lock.yaml", "yarn.lock", "package-lock.json"}

// InstallActions returns one install sequence per detected stack tag, in record order.
// Lockfile presence is read from fsys rather than from the record's signals.
func InstallActions(record models.DetectionRecord, fsys fs.FS, opts InstallOptions) ([]models.InstallSet, error) {
	python := opts.Python
	if python == "" {
		python = "python3"
	}

	sets := []models.InstallSet{}
	for _, tag := range record.Types {
		var cmds []models.Command
		var err error

		switch tag {
		case models.TagPython:
			cmds, err = pythonInstall(fsys, python)
		case models.TagNode:
			cmds, err = nodeInstall(fsys)
		case models.TagRust:
			cmds = []models.Command{models.NewCommand("cargo", "update")}
		case models.TagGo:
			cmds = []models.Command{models.NewCommand("go", "mod", "download")}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}

		sets = append(sets, models.InstallSet{Tag: tag, Commands: cmds})
	}

	return sets, nil
}

func pythonInstall(fsys fs.FS, python string) ([]models.Command, error) {
	cmds := []models.Command{
		models.NewCommand(python, "-m", "pip", "install", "-U", "pip", "setuptools", "wheel"),
	}

	hasRequirements, err := fileExists(fsys, "requirements.txt")
	if err != nil {
		return nil, err
	}
	if hasRequirements {
		cmds = append(cmds, models.NewCommand(python, "-m", "pip", "install", "-r", "requirements.txt"))
	} else {
		// Keep the test stage runnable without a requirements file
		cmds = append(cmds, models.NewCommand(python, "-m", "pip", "install", "pytest"))
	}

	return cmds, nil
}

// NodePackageManager returns the package manager chosen by lockfile, and whether a lockfile was found
func NodePackageManager(fsys fs.FS) (string, bool, error) {
	for _, lock := range nodeLockfiles {
		ok, err := fileExists(fsys, lock)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		switch lock {
		case "pnpm-lock.yaml":
			return "pnpm", true, nil
		case "yarn.lock":
			return "yarn", true, nil
		default:
			return "npm", true, nil
		}
	}
	return "npm", false, nil
}

func nodeInstall(fsys fs.FS) ([]models.Command, error) {
	pm, locked, err := NodePackageManager(fsys)
	if err != nil {
		return nil, err
	}

	switch pm {
	case "pnpm":
		return []models.Command{models.NewCommand("pnpm", "install", "--frozen-lockfile")}, nil
	case "yarn":
		return []models.Command{models.NewCommand("yarn", "install", "--frozen-lockfile")}, nil
	}

	// npm ci only with a lockfile; drift is not checked
	if locked {
		return []models.Command{models.NewCommand("npm", "ci")}, nil
	}
	return []models.Command{models.NewCommand("npm", "install")}, nil
}

func fileExists(fsys fs.FS, name string) (bool, error) {
	_, err := fs.Stat(fsys, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &models.FilesystemError{Path: name, Err: err}
}
