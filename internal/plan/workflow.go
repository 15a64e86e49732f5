// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"

	"github.com/kusari-oss/piper/internal/core/config"
	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/core/template"
	"gopkg.in/yaml.v3"
)

// WorkflowName is the name of the generated reusable workflow
const WorkflowName = "Piper: Generated Pipeline"

// WorkflowOptions controls workflow rendering
type WorkflowOptions struct {
	RunsOn string
}

type workflowJob struct {
	Needs  string        `yaml:"needs,omitempty"`
	RunsOn string        `yaml:"runs-on"`
	Steps  []models.Step `yaml:"steps"`
}

// RenderWorkflow renders the plan as a reusable GitHub Actions workflow.
// Keys are emitted as name, on, jobs; jobs follow stage order.
func RenderWorkflow(p *models.PipelinePlan, opts WorkflowOptions) ([]byte, error) {
	if err := ValidateStages(p.Stages); err != nil {
		return nil, err
	}

	runsOn := opts.RunsOn
	if runsOn == "" {
		runsOn = config.NewDefaultConfig().RunsOn
	}

	jobs := &yaml.Node{Kind: yaml.MappingNode}
	for _, stage := range p.Stages {
		job := &yaml.Node{}
		if err := job.Encode(workflowJob{Needs: stage.Needs, RunsOn: runsOn, Steps: stage.Steps}); err != nil {
			return nil, fmt.Errorf("error encoding job %s: %w", stage.Name, err)
		}
		jobs.Content = append(jobs.Content, scalar(stage.Name), job)
	}

	on := mapping(scalar("workflow_call"), &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle})
	doc := mapping(
		scalar("name"), scalar(WorkflowName),
		scalar("on"), on,
		scalar("jobs"), jobs,
	)

	out, err := format.FormatData(doc, true)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

const bootstrapTemplate = `name: Piper
on:
  push:
    branches: [ main ]
  pull_request:
    branches: [ main ]
jobs:
  detect:
    runs-on: {{ .runs_on }}
    steps:
      - uses: actions/checkout@v4
      - name: Setup Go
        uses: actions/setup-go@v5
        with:
          go-version: '{{ .go_version }}'
      - name: Install piper
        run: go install {{ .package }}
      - name: Scan
        run: piper scan --report {{ .report_path }}
      - name: Generate workflow
        run: piper generate --in {{ .report_path }} --out {{ .workflow_path }}
  pipeline:
    needs: detect
    uses: ./{{ .workflow_path }}
`

// RenderBootstrap renders the workflow that installs piper, scans the repository,
// generates the pipeline and calls it.
func RenderBootstrap(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return template.ProcessString(bootstrapTemplate, map[string]interface{}{
		"runs_on":       cfg.RunsOn,
		"go_version":    cfg.GoVersion,
		"package":       cfg.Package,
		"report_path":   cfg.ReportPath,
		"workflow_path": cfg.WorkflowPath,
	})
}
