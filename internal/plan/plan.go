// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kusari-oss/piper/internal/core/config"
	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
	"github.com/kusari-oss/piper/internal/rules"
	"go.uber.org/zap"
)

// Options configures plan assembly. The zero value uses default configuration
// and the built-in security rule table.
type Options struct {
	Config  *config.Config
	RuleSet *rules.RuleSet
	Logger  *zap.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.Config == nil {
		o.Config = config.NewDefaultConfig()
	}
	o.Logger = logging.OrNop(o.Logger)

	if o.RuleSet == nil {
		var err error
		if o.Config.Security.RulesFile != "" {
			o.RuleSet, err = rules.LoadRuleSetFile(config.ExpandPathWithTilde(o.Config.Security.RulesFile))
		} else {
			o.RuleSet, err = rules.DefaultRuleSet()
		}
		if err != nil {
			return o, fmt.Errorf("error loading security rules: %w", err)
		}
	}
	return o, nil
}

// BuildPlan assembles the pipeline plan for the project at root
func BuildPlan(record models.DetectionRecord, root string, opts Options) (*models.PipelinePlan, error) {
	if err := detect.CheckRoot(root); err != nil {
		return nil, err
	}
	return BuildPlanFS(record, os.DirFS(root), opts)
}

// BuildPlanFS assembles the pipeline plan reading project files from fsys
func BuildPlanFS(record models.DetectionRecord, fsys fs.FS, opts Options) (*models.PipelinePlan, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	cfg := opts.Config
	log := opts.Logger

	install, err := rules.InstallActions(record, fsys, rules.InstallOptions{Python: cfg.Python})
	if err != nil {
		return nil, err
	}
	log.Debug("mapped install actions", zap.Int("sets", len(install)))

	tests, err := rules.DetectTests(fsys)
	if err != nil {
		return nil, err
	}
	log.Debug("mapped test actions", zap.Int("actions", len(tests)))

	tools, err := opts.RuleSet.SelectTools(record, cfg.Security.ExtraTools)
	if err != nil {
		return nil, err
	}
	log.Debug("selected security tools", zap.Strings("tools", tools))

	stages, err := buildStages(tests, tools, record.Deploy, opts)
	if err != nil {
		return nil, err
	}
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}

	return &models.PipelinePlan{
		InstallActions: install,
		Tests:          tests,
		Tools:          tools,
		Target:         record.Deploy,
		Stages:         stages,
	}, nil
}

// WritePlan persists a plan, creating parent directories as needed
func WritePlan(p *models.PipelinePlan, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating plan directory: %w", err)
	}
	if err := format.WriteFile(path, p); err != nil {
		return fmt.Errorf("error writing plan: %w", err)
	}
	return nil
}
