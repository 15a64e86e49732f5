// SPDX-License-Identifier: Apache-2.0

package models

import (
	"strings"
)

// Stack tags in canonical priority order
const (
	TagNode   = "node"
	TagPython = "python"
	TagRust   = "rust"
	TagGo     = "go"
)

// Framework is the single framework chosen for a project
type Framework string

const (
	FrameworkNext   Framework = "next"
	FrameworkNuxt   Framework = "nuxt"
	FrameworkVue    Framework = "vue"
	FrameworkSvelte Framework = "svelte"
)

// DeployTarget is the single deployment target chosen for a project
type DeployTarget string

const (
	DeployVercel  DeployTarget = "vercel"
	DeployNetlify DeployTarget = "netlify"
	DeployHeroku  DeployTarget = "heroku"
	DeployRailway DeployTarget = "railway"
	DeployDocker  DeployTarget = "docker"
)

// StackTags lists the stack tags in the order they appear in DetectionRecord.Types
var StackTags = []string{TagNode, TagPython, TagRust, TagGo}

// FrameworkPriority is evaluated top-down, first match wins
var FrameworkPriority = []Framework{FrameworkNext, FrameworkNuxt, FrameworkVue, FrameworkSvelte}

// DeployPriority is evaluated top-down, first match wins
var DeployPriority = []DeployTarget{DeployVercel, DeployNetlify, DeployHeroku, DeployRailway, DeployDocker}

// DetectionRecord is the classified result of a project scan
type DetectionRecord struct {
	Types     []string            `json:"types" yaml:"types"`
	Framework Framework           `json:"framework,omitempty" yaml:"framework,omitempty"`
	Deploy    DeployTarget        `json:"deploy,omitempty" yaml:"deploy,omitempty"`
	Signals   map[string][]string `json:"signals" yaml:"signals"`
}

// AsMap returns the record as plain data, the shape rule conditions see
func (r DetectionRecord) AsMap() map[string]interface{} {
	types := make([]interface{}, 0, len(r.Types))
	for _, t := range r.Types {
		types = append(types, t)
	}

	signals := make(map[string]interface{}, len(r.Signals))
	for tag, files := range r.Signals {
		list := make([]interface{}, 0, len(files))
		for _, f := range files {
			list = append(list, f)
		}
		signals[tag] = list
	}

	return map[string]interface{}{
		"types":     types,
		"framework": string(r.Framework),
		"deploy":    string(r.Deploy),
		"signals":   signals,
	}
}

// Command is a single executable command. It is data, never a running process.
type Command struct {
	Label string   `json:"label" yaml:"label"`
	Args  []string `json:"args" yaml:"args"`
}

// NewCommand builds a command whose label is its program name
func NewCommand(args ...string) Command {
	label := ""
	if len(args) > 0 {
		label = args[0]
	}
	return Command{Label: label, Args: args}
}

// String renders the command as a single shell line
func (c Command) String() string {
	quoted := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:@+,%*", r)
}

// InstallSet is the ordered install sequence for one stack tag
type InstallSet struct {
	Tag      string    `json:"tag" yaml:"tag"`
	Commands []Command `json:"commands" yaml:"commands"`
}

// TestAction is a detected test invocation
type TestAction struct {
	Run string `json:"run" yaml:"run"`
	Cmd string `json:"cmd" yaml:"cmd"`
}

// FallbackTestAction is emitted when nothing in the project looks testable
var FallbackTestAction = TestAction{Run: "fallback", Cmd: "echo 'No tests detected'"}

// Step is a single step of a pipeline stage
type Step struct {
	Name            string            `json:"name,omitempty" yaml:"name,omitempty"`
	Uses            string            `json:"uses,omitempty" yaml:"uses,omitempty"`
	Run             string            `json:"run,omitempty" yaml:"run,omitempty"`
	With            map[string]string `json:"with,omitempty" yaml:"with,omitempty"`
	Env             map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	ContinueOnError bool              `json:"continue_on_error,omitempty" yaml:"continue-on-error,omitempty"`
}

// Stage is one node of the setup -> test -> security -> deploy chain
type Stage struct {
	Name  string `json:"name" yaml:"name"`
	Needs string `json:"needs,omitempty" yaml:"needs,omitempty"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Stage names in chain order
const (
	StageSetup    = "setup"
	StageTest     = "test"
	StageSecurity = "security"
	StageDeploy   = "deploy"
)

// StageOrder is the fixed stage chain
var StageOrder = []string{StageSetup, StageTest, StageSecurity, StageDeploy}

// PipelinePlan is the generated plan for a project
type PipelinePlan struct {
	InstallActions []InstallSet `json:"install_actions" yaml:"install_actions"`
	Tests          []TestAction `json:"tests" yaml:"tests"`
	Tools          []string     `json:"tools" yaml:"tools"`
	Target         DeployTarget `json:"target,omitempty" yaml:"target,omitempty"`
	Stages         []Stage      `json:"stages" yaml:"stages"`
}

// Stage returns the named stage, or nil
func (p *PipelinePlan) Stage(name string) *Stage {
	for i := range p.Stages {
		if p.Stages[i].Name == name {
			return &p.Stages[i]
		}
	}
	return nil
}

// ExecutionOptions contains options for running commands locally
type ExecutionOptions struct {
	DryRun      bool
	WorkingDir  string
	Parallelism int
}
