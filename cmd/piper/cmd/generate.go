// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
	"github.com/kusari-oss/piper/internal/plan"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCmd(g *globals) *cobra.Command {
	var (
		inPath   string
		outPath  string
		planPath string
		rescan   bool
		diff     bool
	)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the CI/CD workflow from a detection report",
		Long: `Generate reads the detection report written by 'piper scan' (or rescans with
--rescan), builds the pipeline plan, saves it, and writes a reusable GitHub
Actions workflow. With --diff the workflow is compared with the one on disk
and nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *g.cfg
			if cfg.Security.RulesFile != "" {
				cfg.Security.RulesFile = g.resolve(cfg.Security.RulesFile)
			}
			if inPath == "" {
				inPath = cfg.ReportPath
			}
			if outPath == "" {
				outPath = cfg.WorkflowPath
			}
			if planPath == "" {
				planPath = cfg.PlanPath
			}
			inPath, outPath, planPath = g.resolve(inPath), g.resolve(outPath), g.resolve(planPath)

			var record models.DetectionRecord
			var err error
			if rescan {
				g.logger.Debug("rescanning project", zap.String("root", g.root))
				record, err = detect.Scan(g.root)
			} else {
				g.logger.Debug("loading detection report", zap.String("path", inPath))
				record, err = plan.LoadDetectionFile(inPath)
			}
			if err != nil {
				var fsErr *models.FilesystemError
				if !rescan && errors.As(err, &fsErr) && errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("%w (run 'piper scan' first or pass --rescan)", err)
				}
				return err
			}

			p, err := plan.BuildPlan(record, g.root, plan.Options{Config: &cfg, Logger: g.logger})
			if err != nil {
				return err
			}

			workflow, err := plan.RenderWorkflow(p, plan.WorkflowOptions{RunsOn: cfg.RunsOn})
			if err != nil {
				return err
			}

			if diff {
				text, err := workflowDiff(outPath, string(workflow))
				if err != nil {
					return err
				}
				if text == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s is up to date\n", statusOK("✓"), outPath)
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			if err := plan.WritePlan(p, planPath); err != nil {
				return err
			}
			g.logger.Debug("plan written", zap.String("path", planPath))

			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("error creating workflow directory: %w", err)
			}
			if err := os.WriteFile(outPath, workflow, 0644); err != nil {
				return fmt.Errorf("error writing workflow: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Generated workflow: %s\n", statusOK("✓"), outPath)
			if len(p.Tools) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s no security tools selected\n", statusWarn("!"))
			}
			return nil
		},
	}

	generateCmd.Flags().StringVar(&inPath, "in", "", "input detection report (default from config)")
	generateCmd.Flags().StringVar(&outPath, "out", "", "output workflow file (default from config)")
	generateCmd.Flags().StringVar(&planPath, "plan", "", "output plan file (default from config)")
	generateCmd.Flags().BoolVar(&rescan, "rescan", false, "scan the project instead of reading the detection report")
	generateCmd.Flags().BoolVar(&diff, "diff", false, "show a unified diff against the existing workflow instead of writing")

	return generateCmd
}

// workflowDiff returns a unified diff from the workflow at path to content, or "" when they match
func workflowDiff(path, content string) (string, error) {
	before := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		before = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", fmt.Errorf("error reading existing workflow: %w", err)
	}

	if before == content {
		return "", nil
	}

	ud := difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(content),
		FromFile: path + " (current)",
		ToFile:   path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("error computing diff: %w", err)
	}
	return text, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return difflib.SplitLines(s + "\n")
}
