// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Constants for default paths
const (
	DefaultConfigFileName = ".piper.yaml"
	DefaultReportPath     = ".pipeline/detection.json"
	DefaultPlanPath       = ".pipeline/plan.json"
	DefaultWorkflowPath   = ".github/workflows/generated.yml"
	DefaultBootstrapPath  = ".github/workflows/piper.yml"
	EnvPrefix             = "PIPER"
)

// SecurityConfig controls how selected scanners run in the security stage
type SecurityConfig struct {
	// Blocking lists tools whose failure fails the security stage
	Blocking []string `mapstructure:"blocking"`
	// ExtraTools are opt-in tools visible to rule conditions as options.extra_tools
	ExtraTools []string `mapstructure:"extra_tools"`
	// RulesFile replaces the built-in scanner rule table when set
	RulesFile string `mapstructure:"rules_file"`
}

// Config holds the application configuration
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Python is the interpreter used for pip install commands
	Python string `mapstructure:"python"`

	ReportPath    string `mapstructure:"report_path"`
	PlanPath      string `mapstructure:"plan_path"`
	WorkflowPath  string `mapstructure:"workflow_path"`
	BootstrapPath string `mapstructure:"bootstrap_path"`

	// Package is what the bootstrap workflow installs to get piper
	Package string `mapstructure:"package"`

	RunsOn        string `mapstructure:"runs_on"`
	NodeVersion   string `mapstructure:"node_version"`
	PythonVersion string `mapstructure:"python_version"`
	GoVersion     string `mapstructure:"go_version"`

	// Parallelism bounds how many stack tags install at once locally
	Parallelism int `mapstructure:"parallelism"`

	Security SecurityConfig `mapstructure:"security"`
}

// NewDefaultConfig creates a default configuration
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		Python:        "python3",
		ReportPath:    DefaultReportPath,
		PlanPath:      DefaultPlanPath,
		WorkflowPath:  DefaultWorkflowPath,
		BootstrapPath: DefaultBootstrapPath,
		Package:       "github.com/kusari-oss/piper/cmd/piper@latest",
		RunsOn:        "ubuntu-latest",
		NodeVersion:   "lts/*",
		PythonVersion: "3.12",
		GoVersion:     "stable",
		Parallelism:   4,
		Security: SecurityConfig{
			Blocking:   []string{},
			ExtraTools: []string{},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("python", d.Python)
	v.SetDefault("report_path", d.ReportPath)
	v.SetDefault("plan_path", d.PlanPath)
	v.SetDefault("workflow_path", d.WorkflowPath)
	v.SetDefault("bootstrap_path", d.BootstrapPath)
	v.SetDefault("package", d.Package)
	v.SetDefault("runs_on", d.RunsOn)
	v.SetDefault("node_version", d.NodeVersion)
	v.SetDefault("python_version", d.PythonVersion)
	v.SetDefault("go_version", d.GoVersion)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("security.blocking", d.Security.Blocking)
	v.SetDefault("security.extra_tools", d.Security.ExtraTools)
	v.SetDefault("security.rules_file", d.Security.RulesFile)
}

// ExpandPathWithTilde expands ~ to user home directory
func ExpandPathWithTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path // Return original if can't expand
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// LoadConfig loads the application configuration.
// Defaults are overlaid by the config file and then by PIPER_* environment variables.
// An explicit configPath must exist; otherwise <projectDir>/.piper.yaml is used when present.
func LoadConfig(configPath string, projectDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(ExpandPathWithTilde(configPath))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	} else {
		if projectDir == "" {
			projectDir = "."
		}
		v.SetConfigFile(filepath.Join(projectDir, DefaultConfigFileName))
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
			// No project config is fine, defaults apply
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings that would produce an unusable pipeline
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Python) == "" {
		return fmt.Errorf("python interpreter must not be empty")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if strings.TrimSpace(c.RunsOn) == "" {
		return fmt.Errorf("runs_on must not be empty")
	}
	return nil
}

// IsBlocking reports whether a security tool is configured to fail its stage
func (c *Config) IsBlocking(tool string) bool {
	for _, b := range c.Security.Blocking {
		if b == tool {
			return true
		}
	}
	return false
}
