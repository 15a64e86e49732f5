// SPDX-License-Identifier: Apache-2.0

package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/kusari-oss/piper/internal/core/format"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/rules/condition"
	"gopkg.in/yaml.v3"
)

//go:embed security.yaml
var defaultSecurityRules []byte

// SecurityRule selects a tool when its CEL condition holds
type SecurityRule struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"`
	Tool      string `yaml:"tool"`
	Reason    string `yaml:"reason,omitempty"`
}

// Tool describes how a security scanner is invoked in the security stage
type Tool struct {
	Name    string            `yaml:"name"`
	Run     string            `yaml:"run"`
	SoftRun string            `yaml:"soft_run,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// Command returns the shell line for the tool. A non-blocking tool never fails its step.
func (t Tool) Command(blocking bool) string {
	if blocking {
		return t.Run
	}
	if t.SoftRun != "" {
		return t.SoftRun
	}
	return t.Run + " || true"
}

// SecurityConfig is the on-disk shape of a rule table
type SecurityConfig struct {
	Rules []SecurityRule  `yaml:"rules"`
	Tools map[string]Tool `yaml:"tools"`
}

type compiledRule struct {
	rule SecurityRule
	cond *condition.Condition
}

// RuleSet is a compiled, read-only security rule table
type RuleSet struct {
	rules []compiledRule
	tools map[string]Tool
}

// ParseSecurityConfig decodes a rule table document
func ParseSecurityConfig(data []byte) (*SecurityConfig, error) {
	var cfg SecurityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing security rules: %w", err)
	}
	return &cfg, nil
}

// NewRuleSet validates and compiles a rule table
func NewRuleSet(cfg *SecurityConfig) (*RuleSet, error) {
	evaluator, err := condition.NewCELEvaluator()
	if err != nil {
		return nil, err
	}

	set := &RuleSet{tools: make(map[string]Tool, len(cfg.Tools))}
	for id, tool := range cfg.Tools {
		if tool.Run == "" {
			return nil, fmt.Errorf("tool '%s' has no run command", id)
		}
		if tool.Name == "" {
			tool.Name = id
		}
		set.tools[id] = tool
	}

	seen := make(map[string]bool)
	for _, rule := range cfg.Rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("security rule has empty ID")
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("duplicate security rule ID: %s", rule.ID)
		}
		seen[rule.ID] = true

		if _, ok := set.tools[rule.Tool]; !ok {
			return nil, fmt.Errorf("rule '%s' selects undefined tool '%s'", rule.ID, rule.Tool)
		}
		if rule.Condition == "" {
			return nil, fmt.Errorf("rule '%s' has no condition", rule.ID)
		}

		cond, err := evaluator.Compile(rule.Condition)
		if err != nil {
			return nil, fmt.Errorf("error compiling rule %s: %w", rule.ID, err)
		}
		set.rules = append(set.rules, compiledRule{rule: rule, cond: cond})
	}

	return set, nil
}

var defaultRuleSet = sync.OnceValues(func() (*RuleSet, error) {
	cfg, err := ParseSecurityConfig(defaultSecurityRules)
	if err != nil {
		return nil, err
	}
	return NewRuleSet(cfg)
})

// DefaultRuleSet returns the built-in rule table
func DefaultRuleSet() (*RuleSet, error) {
	return defaultRuleSet()
}

// LoadRuleSetFile loads a custom rule table from disk
func LoadRuleSetFile(path string) (*RuleSet, error) {
	if !format.IsYAMLFile(path) && !format.IsJSONFile(path) {
		return nil, fmt.Errorf("security rules file %s must be YAML or JSON", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading security rules: %w", err)
	}
	cfg, err := ParseSecurityConfig(data)
	if err != nil {
		return nil, err
	}
	return NewRuleSet(cfg)
}

// SelectTools returns the tools whose rules match the record, deduplicated,
// in the order they first match.
func (s *RuleSet) SelectTools(record models.DetectionRecord, extraTools []string) ([]string, error) {
	detection := record.AsMap()

	extra := make([]interface{}, 0, len(extraTools))
	for _, t := range extraTools {
		extra = append(extra, t)
	}
	options := map[string]interface{}{"extra_tools": extra}

	selected := []string{}
	seen := make(map[string]bool)
	for _, r := range s.rules {
		if seen[r.rule.Tool] {
			continue
		}
		matches, err := r.cond.Evaluate(detection, options)
		if err != nil {
			return nil, fmt.Errorf("error evaluating rule %s (%s): %w", r.rule.ID, r.cond.Expression(), err)
		}
		if matches {
			seen[r.rule.Tool] = true
			selected = append(selected, r.rule.Tool)
		}
	}

	return selected, nil
}

// Tool returns the definition of a tool
func (s *RuleSet) Tool(id string) (Tool, bool) {
	t, ok := s.tools[id]
	return t, ok
}
