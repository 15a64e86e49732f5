// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/kusari-oss/piper/internal/core/config"
	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	statusOK   = color.New(color.FgGreen).SprintFunc()
	statusWarn = color.New(color.FgYellow).SprintFunc()
)

// globals is the state shared by every subcommand once PersistentPreRunE has run
type globals struct {
	configFile string
	logLevel   string
	root       string

	cfg    *config.Config
	logger *zap.Logger
}

// resolve makes path relative to the project root unless it is absolute
func (g *globals) resolve(path string) string {
	path = config.ExpandPathWithTilde(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(g.root, path)
}

// NewRootCmd builds the piper command tree
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "piper",
		Short: "Piper - CI/CD pipeline generator",
		Long: `Piper scans a repository for the files that identify its stack, framework
and deploy target, and turns what it finds into a GitHub Actions pipeline
with setup, test, security and deploy stages.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(g.root)
			if err != nil {
				return fmt.Errorf("error resolving project root: %w", err)
			}
			g.root = root

			g.cfg, err = config.LoadConfig(g.configFile, g.root)
			if err != nil {
				return err
			}

			level := g.cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = g.logLevel
			}
			g.logger, err = logging.New(level)
			if err != nil {
				return err
			}
			g.logger.Debug("configuration loaded", zap.String("root", g.root), zap.String("config", g.configFile))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default is <root>/"+config.DefaultConfigFileName+")")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&g.root, "root", ".", "project root directory")

	rootCmd.AddCommand(newScanCmd(g))
	rootCmd.AddCommand(newGenerateCmd(g))
	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newTestCmd(g))
	rootCmd.AddCommand(newInitCmd(g))

	return rootCmd
}

// Execute runs the piper command tree. An interrupt cancels running commands.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
