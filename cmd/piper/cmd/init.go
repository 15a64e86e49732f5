// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kusari-oss/piper/internal/plan"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globals) *cobra.Command {
	var pkg string
	var outPath string
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the bootstrap workflow that scans, generates and runs the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *g.cfg
			if pkg != "" {
				cfg.Package = pkg
			}
			if outPath == "" {
				outPath = cfg.BootstrapPath
			}
			out := g.resolve(outPath)

			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}

			content, err := plan.RenderBootstrap(&cfg)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("error creating workflow directory: %w", err)
			}
			if err := os.WriteFile(out, content, 0644); err != nil {
				return fmt.Errorf("error writing bootstrap workflow: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Bootstrap workflow: %s\n", statusOK("✓"), out)
			return nil
		},
	}

	initCmd.Flags().StringVar(&pkg, "package", "", "package the workflow installs piper from (default from config)")
	initCmd.Flags().StringVar(&outPath, "out", "", "output path for the bootstrap workflow (default from config)")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing bootstrap workflow")

	return initCmd
}
