// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/kusari-oss/piper/internal/detect"
	"github.com/kusari-oss/piper/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScanCmd(g *globals) *cobra.Command {
	var reportPath string

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the project and detect its technology stack",
		Long: `Scan looks for marker files at the top level of the project root, classifies
them into stack types, a framework and a deploy target, writes the detection
report and prints a summary table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportPath == "" {
				reportPath = g.cfg.ReportPath
			}
			out := g.resolve(reportPath)

			record, err := detect.Scan(g.root)
			if err != nil {
				return err
			}
			g.logger.Debug("scan complete",
				zap.Strings("types", record.Types),
				zap.String("framework", string(record.Framework)),
				zap.String("deploy", string(record.Deploy)))

			if err := detect.WriteReport(record, out); err != nil {
				return err
			}

			if err := report.Print(cmd.OutOrStdout(), record); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s detection report written to %s\n", statusOK("✓"), out)
			return nil
		},
	}

	scanCmd.Flags().StringVar(&reportPath, "report", "", "output path for the detection report (default from config, "+detect.DefaultReportPath+")")

	return scanCmd
}
