// SPDX-License-Identifier: Apache-2.0

package detect_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, n := range names {
		path := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}
	return root
}

func TestScanNodeAndGo(t *testing.T) {
	root := project(t, "package.json", "go.mod")

	record, err := detect.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"node", "go"}, record.Types)
	assert.Empty(t, record.Framework)
	assert.Empty(t, record.Deploy)
	assert.Equal(t, []string{"package.json"}, record.Signals["node"])
	assert.Equal(t, []string{"go.mod"}, record.Signals["go"])
	assert.Equal(t, []string{}, record.Signals["python"])
	assert.Len(t, record.Signals, len(detect.KnownTags()))
}

func TestScanPythonRequirements(t *testing.T) {
	root := project(t, "requirements.txt")

	record, err := detect.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, record.Types)
	assert.Equal(t, []string{"requirements.txt"}, record.Signals["python"])
}

func TestScanIsIdempotent(t *testing.T) {
	root := project(t, "package.json", "yarn.lock", "next.config.js", "vercel.json", "Dockerfile")

	first, err := detect.Scan(root)
	require.NoError(t, err)
	second, err := detect.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScanIgnoresNestedMarkers(t *testing.T) {
	root := project(t, "sub/package.json", "sub/go.mod")

	record, err := detect.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, record.Types)
}

func TestScanMarkerOrder(t *testing.T) {
	root := project(t, "package-lock.json", "package.json")

	record, err := detect.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"package.json", "package-lock.json"}, record.Signals["node"])
}

func TestScanMissingRoot(t *testing.T) {
	_, err := detect.Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	var fsErr *models.FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScanRootIsFile(t *testing.T) {
	root := project(t, "file.txt")

	_, err := detect.Scan(filepath.Join(root, "file.txt"))
	var fsErr *models.FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Contains(t, err.Error(), "not a directory")
}

func TestClassifyFrameworkPriority(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  models.Framework
	}{
		{name: "next over everything", files: []string{"svelte.config.js", "vue.config.js", "nuxt.config.ts", "next.config.mjs"}, want: models.FrameworkNext},
		{name: "nuxt over vue", files: []string{"vue.config.js", "nuxt.config.js"}, want: models.FrameworkNuxt},
		{name: "vue over svelte", files: []string{"svelte.config.js", "vue.config.js"}, want: models.FrameworkVue},
		{name: "svelte alone", files: []string{"svelte.config.js"}, want: models.FrameworkSvelte},
		{name: "none", files: []string{"package.json"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for _, f := range tt.files {
				fsys[f] = &fstest.MapFile{}
			}
			signals, err := detect.ScanSignalsFS(fsys)
			require.NoError(t, err)

			record := detect.Classify(signals)
			assert.Equal(t, tt.want, record.Framework)
		})
	}
}

func TestClassifyDeployPriority(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  models.DeployTarget
	}{
		{name: "vercel over docker", files: []string{"Dockerfile", "vercel.json"}, want: models.DeployVercel},
		{name: "netlify over heroku", files: []string{"Procfile", "netlify.toml"}, want: models.DeployNetlify},
		{name: "heroku over railway", files: []string{"railway.toml", "app.json"}, want: models.DeployHeroku},
		{name: "railway over docker", files: []string{"compose.yaml", "railway.json"}, want: models.DeployRailway},
		{name: "docker compose", files: []string{"docker-compose.yml"}, want: models.DeployDocker},
		{name: "none", files: []string{"go.mod"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for _, f := range tt.files {
				fsys[f] = &fstest.MapFile{}
			}
			signals, err := detect.ScanSignalsFS(fsys)
			require.NoError(t, err)

			assert.Equal(t, tt.want, detect.Classify(signals).Deploy)
		})
	}
}

func TestClassifyNormalizesSignals(t *testing.T) {
	record := detect.Classify(map[string][]string{"rust": {"Cargo.toml"}})

	assert.Equal(t, []string{"rust"}, record.Types)
	for _, tag := range detect.KnownTags() {
		assert.NotNil(t, record.Signals[tag], tag)
	}

	empty := detect.Classify(nil)
	assert.Equal(t, []string{}, empty.Types)
}

func TestVerify(t *testing.T) {
	base := detect.Classify(map[string][]string{
		"node":   {"package.json"},
		"next":   {"next.config.js"},
		"vercel": {"vercel.json"},
	})
	assert.Empty(t, detect.Verify(base))

	t.Run("TypesMismatch", func(t *testing.T) {
		r := base
		r.Types = []string{"go"}
		problems := detect.Verify(r)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "types")
	})

	t.Run("FrameworkMismatch", func(t *testing.T) {
		r := base
		r.Framework = models.FrameworkVue
		problems := detect.Verify(r)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "framework")
	})

	t.Run("DeployMismatch", func(t *testing.T) {
		r := base
		r.Deploy = ""
		problems := detect.Verify(r)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "deploy")
	})

	t.Run("UnknownTags", func(t *testing.T) {
		r := base
		r.Signals = map[string][]string{}
		for k, v := range base.Signals {
			r.Signals[k] = v
		}
		r.Signals["zig"] = []string{"build.zig"}
		r.Signals["java"] = []string{}

		problems := detect.Verify(r)
		require.Len(t, problems, 2)
		assert.Contains(t, problems[0], `"java"`)
		assert.Contains(t, problems[1], `"zig"`)
	})

	t.Run("NilTypesWithNoSignals", func(t *testing.T) {
		assert.Empty(t, detect.Verify(models.DetectionRecord{}))
	})
}

func TestWriteReport(t *testing.T) {
	root := project(t, "Cargo.toml", "Dockerfile")
	record, err := detect.Scan(root)
	require.NoError(t, err)

	path := filepath.Join(root, ".pipeline", "detection.json")
	require.NoError(t, detect.WriteReport(record, path))

	var loaded models.DetectionRecord
	require.NoError(t, format.ParseFile(path, &loaded))
	assert.Equal(t, record, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deploy": "docker"`)
	assert.NotContains(t, string(data), `"framework"`)
}

func TestIsKnownTag(t *testing.T) {
	assert.True(t, detect.IsKnownTag("docker"))
	assert.False(t, detect.IsKnownTag("zig"))
}
