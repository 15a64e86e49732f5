// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/detect"
	"github.com/kusari-oss/piper/internal/executor"
	"github.com/kusari-oss/piper/internal/rules"
	"github.com/spf13/cobra"
)

func newInstallCmd(g *globals) *cobra.Command {
	var dryRun bool
	var verbose bool

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install dependencies for the detected project types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := detect.Scan(g.root)
			if err != nil {
				return err
			}

			sets, err := rules.InstallActions(record, os.DirFS(g.root), rules.InstallOptions{Python: g.cfg.Python})
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s nothing to install\n", statusWarn("!"))
				return nil
			}

			installer := &executor.Installer{
				Runner: executor.ExecRunner{Verbose: verbose, Logger: g.logger},
				Options: models.ExecutionOptions{
					DryRun:      dryRun,
					WorkingDir:  g.root,
					Parallelism: g.cfg.Parallelism,
				},
				Logger: g.logger,
				Out:    cmd.OutOrStdout(),
			}
			if err := installer.Install(cmd.Context(), sets); err != nil {
				return err
			}

			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s dependencies installed\n", statusOK("✓"))
			}
			return nil
		},
	}

	installCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the install commands without running them")
	installCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "stream command output")

	return installCmd
}
