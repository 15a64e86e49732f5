// SPDX-License-Identifier: Apache-2.0

package models

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand(t *testing.T) {
	t.Run("LabelIsProgram", func(t *testing.T) {
		cmd := NewCommand("npm", "ci")
		assert.Equal(t, "npm", cmd.Label)
		assert.Equal(t, []string{"npm", "ci"}, cmd.Args)
		assert.Equal(t, "npm ci", cmd.String())
	})

	t.Run("QuotesWhenNeeded", func(t *testing.T) {
		cmd := NewCommand("echo", "No tests detected", "")
		assert.Equal(t, "echo 'No tests detected' ''", cmd.String())
	})

	t.Run("EmbeddedQuote", func(t *testing.T) {
		cmd := NewCommand("echo", "it's")
		assert.Equal(t, `echo 'it'\''s'`, cmd.String())
	})

	t.Run("Empty", func(t *testing.T) {
		cmd := NewCommand()
		assert.Equal(t, "", cmd.Label)
		assert.Equal(t, "", cmd.String())
	})
}

func TestDetectionRecord(t *testing.T) {
	record := DetectionRecord{
		Types:   []string{TagNode, TagGo},
		Deploy:  DeployDocker,
		Signals: map[string][]string{"node": {"package.json"}, "go": {"go.mod"}, "rust": {}},
	}

	t.Run("AsMap", func(t *testing.T) {
		m := record.AsMap()
		assert.Equal(t, []interface{}{"node", "go"}, m["types"])
		assert.Equal(t, "", m["framework"])
		assert.Equal(t, "docker", m["deploy"])
		signals := m["signals"].(map[string]interface{})
		assert.Equal(t, []interface{}{"package.json"}, signals["node"])
		assert.Equal(t, []interface{}{}, signals["rust"])
	})
}

func TestPipelinePlanStage(t *testing.T) {
	plan := &PipelinePlan{Stages: []Stage{{Name: StageSetup}, {Name: StageTest, Needs: StageSetup}}}

	stage := plan.Stage(StageTest)
	if assert.NotNil(t, stage) {
		assert.Equal(t, StageSetup, stage.Needs)
	}
	assert.Nil(t, plan.Stage(StageDeploy))
}

func TestErrors(t *testing.T) {
	t.Run("FilesystemError", func(t *testing.T) {
		var err error = &FilesystemError{Path: "/nope", Err: fs.ErrNotExist}
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.Contains(t, err.Error(), "/nope")
	})

	t.Run("ManifestParseError", func(t *testing.T) {
		inner := errors.New("unexpected end of JSON input")
		var err error = &ManifestParseError{Path: "package.json", Err: inner}
		assert.ErrorIs(t, err, inner)
		assert.Contains(t, err.Error(), "package.json")
	})

	t.Run("InvalidInputError", func(t *testing.T) {
		err := &InvalidInputError{Source: "detection.json", Problems: []string{"types is required"}}
		assert.Contains(t, err.Error(), "detection.json")
		assert.Contains(t, err.Error(), "- types is required")
		assert.Nil(t, err.Unwrap())
	})
}
