// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/kusari-oss/piper/internal/executor"
	"github.com/kusari-oss/piper/internal/rules"
	"github.com/spf13/cobra"
)

// testEnv keeps test runners such as jest and vitest out of watch mode
var testEnv = []string{"CI=true"}

func newTestCmd(g *globals) *cobra.Command {
	var dryRun bool
	var verbose bool

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Run the detected test commands locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := rules.DetectTestsAt(g.root)
			if err != nil {
				return err
			}

			runner := &executor.TestRunner{
				Runner: executor.ExecRunner{Verbose: verbose, Env: testEnv, Logger: g.logger},
				Options: models.ExecutionOptions{
					DryRun:     dryRun,
					WorkingDir: g.root,
				},
				Logger: g.logger,
				Out:    cmd.OutOrStdout(),
			}
			if err := runner.Run(cmd.Context(), actions); err != nil {
				return err
			}

			if !dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s tests passed\n", statusOK("✓"))
			}
			return nil
		},
	}

	testCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the test commands without running them")
	testCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "stream command output")

	return testCmd
}
