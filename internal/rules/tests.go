// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
)

// nodeTestFrameworks are tried in order when package.json has no test script
var nodeTestFrameworks = []struct {
	dependency string
	cmd        string
}{
	{dependency: "jest", cmd: "npx jest"},
	{dependency: "vitest", cmd: "npx vitest"},
}

const pythonTestCmd = "pytest -q --maxfail=1 --disable-warnings"

// PackageManifest holds the package.json fields test detection looks at
type PackageManifest struct {
	Scripts         map[string]interface{} `json:"scripts"`
	DevDependencies map[string]interface{} `json:"devDependencies"`
}

// DetectTestsAt detects test commands for the project at root
func DetectTestsAt(root string) ([]models.TestAction, error) {
	if err := detect.CheckRoot(root); err != nil {
		return nil, err
	}
	return DetectTests(os.DirFS(root))
}

// DetectTests inspects fsys for test signals. The result is never empty:
// when nothing fires it holds only the fallback action.
func DetectTests(fsys fs.FS) ([]models.TestAction, error) {
	actions := []models.TestAction{}

	node, err := nodeTests(fsys)
	if err != nil {
		return nil, err
	}
	actions = append(actions, node...)

	python, err := pythonTestsGate(fsys)
	if err != nil {
		return nil, err
	}
	if python {
		actions = append(actions, models.TestAction{Run: models.TagPython, Cmd: pythonTestCmd})
	}

	hasCargo, err := fileExists(fsys, "Cargo.toml")
	if err != nil {
		return nil, err
	}
	if hasCargo {
		actions = append(actions, models.TestAction{Run: models.TagRust, Cmd: "cargo test --all --quiet"})
	}

	hasGoMod, err := fileExists(fsys, "go.mod")
	if err != nil {
		return nil, err
	}
	if hasGoMod {
		actions = append(actions, models.TestAction{Run: models.TagGo, Cmd: "go test ./..."})
	}

	if len(actions) == 0 {
		actions = append(actions, models.FallbackTestAction)
	}
	return actions, nil
}

// ReadPackageManifest parses package.json. Unreadable or malformed content is a ManifestParseError.
func ReadPackageManifest(fsys fs.FS) (*PackageManifest, error) {
	data, err := fs.ReadFile(fsys, "package.json")
	if err != nil {
		return nil, &models.ManifestParseError{Path: "package.json", Err: err}
	}

	var pkg PackageManifest
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, &models.ManifestParseError{Path: "package.json", Err: err}
	}
	return &pkg, nil
}

func nodeTests(fsys fs.FS) ([]models.TestAction, error) {
	ok, err := fileExists(fsys, "package.json")
	if err != nil || !ok {
		return nil, err
	}

	pkg, err := ReadPackageManifest(fsys)
	if err != nil {
		return nil, err
	}

	if _, declared := pkg.Scripts["test"]; declared {
		return []models.TestAction{{Run: models.TagNode, Cmd: "npm test"}}, nil
	}

	for _, fw := range nodeTestFrameworks {
		if _, declared := pkg.DevDependencies[fw.dependency]; declared {
			return []models.TestAction{{Run: models.TagNode, Cmd: fw.cmd}}, nil
		}
	}

	return nil, nil
}

func pythonTestsGate(fsys fs.FS) (bool, error) {
	for _, marker := range []string{"pyproject.toml", "pytest.ini"} {
		ok, err := fileExists(fsys, marker)
		if err != nil || ok {
			return ok, err
		}
	}

	info, err := fs.Stat(fsys, "tests")
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &models.FilesystemError{Path: "tests", Err: err}
	}
	if !info.IsDir() {
		return false, nil
	}

	entries, err := fs.ReadDir(fsys, "tests")
	if err != nil {
		return false, &models.FilesystemError{Path: "tests", Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := path.Match("test_*.py", entry.Name()); ok {
			return true, nil
		}
	}
	return false, nil
}
