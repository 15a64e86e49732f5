// SPDX-License-Identifier: Apache-2.0

package rules_test

import (
	"testing"
	"testing/fstest"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
	"github.com/kusari-oss/piper/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(names ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, n := range names {
		fsys[n] = &fstest.MapFile{Data: []byte("{}")}
	}
	return fsys
}

func recordFor(t *testing.T, fsys fstest.MapFS) models.DetectionRecord {
	t.Helper()
	signals, err := detect.ScanSignalsFS(fsys)
	require.NoError(t, err)
	return detect.Classify(signals)
}

func commandLines(set models.InstallSet) []string {
	lines := make([]string, 0, len(set.Commands))
	for _, c := range set.Commands {
		lines = append(lines, c.String())
	}
	return lines
}

func TestInstallActionsPython(t *testing.T) {
	t.Run("WithRequirements", func(t *testing.T) {
		fsys := files("requirements.txt")
		sets, err := rules.InstallActions(recordFor(t, fsys), fsys, rules.InstallOptions{})
		require.NoError(t, err)
		require.Len(t, sets, 1)

		assert.Equal(t, "python", sets[0].Tag)
		assert.Equal(t, []string{
			"python3 -m pip install -U pip setuptools wheel",
			"python3 -m pip install -r requirements.txt",
		}, commandLines(sets[0]))
	})

	t.Run("WithoutRequirementsFallsBackToPytest", func(t *testing.T) {
		fsys := files("pyproject.toml")
		sets, err := rules.InstallActions(recordFor(t, fsys), fsys, rules.InstallOptions{Python: "python3.11"})
		require.NoError(t, err)
		require.Len(t, sets, 1)

		assert.Equal(t, []string{
			"python3.11 -m pip install -U pip setuptools wheel",
			"python3.11 -m pip install pytest",
		}, commandLines(sets[0]))
		assert.Equal(t, "python3.11", sets[0].Commands[0].Label)
	})
}

func TestInstallActionsNode(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{name: "pnpm beats npm lockfile", files: []string{"package.json", "pnpm-lock.yaml", "package-lock.json"}, want: "pnpm install --frozen-lockfile"},
		{name: "pnpm beats yarn", files: []string{"package.json", "pnpm-lock.yaml", "yarn.lock"}, want: "pnpm install --frozen-lockfile"},
		{name: "yarn", files: []string{"package.json", "yarn.lock"}, want: "yarn install --frozen-lockfile"},
		{name: "yarn beats npm lockfile", files: []string{"package.json", "yarn.lock", "package-lock.json"}, want: "yarn install --frozen-lockfile"},
		{name: "npm with lockfile", files: []string{"package.json", "package-lock.json"}, want: "npm ci"},
		{name: "npm without lockfile", files: []string{"package.json"}, want: "npm install"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := files(tt.files...)
			sets, err := rules.InstallActions(recordFor(t, fsys), fsys, rules.InstallOptions{})
			require.NoError(t, err)
			require.Len(t, sets, 1)
			assert.Equal(t, "node", sets[0].Tag)
			assert.Equal(t, []string{tt.want}, commandLines(sets[0]))
		})
	}
}

func TestInstallActionsPolyglot(t *testing.T) {
	fsys := files("package.json", "go.mod", "Cargo.toml", "requirements.txt")
	sets, err := rules.InstallActions(recordFor(t, fsys), fsys, rules.InstallOptions{})
	require.NoError(t, err)
	require.Len(t, sets, 4)

	tags := []string{}
	for _, s := range sets {
		tags = append(tags, s.Tag)
	}
	assert.Equal(t, []string{"node", "python", "rust", "go"}, tags)
	assert.Equal(t, []string{"cargo update"}, commandLines(sets[2]))
	assert.Equal(t, []string{"go mod download"}, commandLines(sets[3]))
}

func TestInstallActionsNodeAndGoScenario(t *testing.T) {
	fsys := files("package.json", "go.mod")
	record := recordFor(t, fsys)
	assert.Equal(t, []string{"node", "go"}, record.Types)

	sets, err := rules.InstallActions(record, fsys, rules.InstallOptions{})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, []string{"npm install"}, commandLines(sets[0]))
	assert.Equal(t, []string{"go mod download"}, commandLines(sets[1]))
}

func TestInstallActionsUsesFilesystemNotSignals(t *testing.T) {
	// A persisted record may predate the lockfile; the filesystem wins
	record := models.DetectionRecord{
		Types:   []string{"node"},
		Signals: map[string][]string{"node": {"package.json"}},
	}
	fsys := files("package.json", "yarn.lock")

	sets, err := rules.InstallActions(record, fsys, rules.InstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"yarn install --frozen-lockfile"}, commandLines(sets[0]))
}

func TestInstallActionsEmpty(t *testing.T) {
	fsys := files("README.md")
	sets, err := rules.InstallActions(recordFor(t, fsys), fsys, rules.InstallOptions{})
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestNodePackageManager(t *testing.T) {
	pm, locked, err := rules.NodePackageManager(files("package.json"))
	require.NoError(t, err)
	assert.Equal(t, "npm", pm)
	assert.False(t, locked)

	pm, locked, err = rules.NodePackageManager(files("package-lock.json"))
	require.NoError(t, err)
	assert.Equal(t, "npm", pm)
	assert.True(t, locked)
}
