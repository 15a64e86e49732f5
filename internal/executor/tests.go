// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

// TestRunner runs detected test actions locally, one after another
type TestRunner struct {
	Runner  Runner
	Options models.ExecutionOptions
	Logger  *zap.Logger
	// Out receives the command listing in dry-run mode
	Out io.Writer
}

// SplitCommand turns a test command line into a Command. Lines using shell
// operators run through sh -c.
func SplitCommand(line string) (models.Command, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return models.Command{}, fmt.Errorf("error parsing command %q: %w", line, err)
	}
	if p.Position >= 0 {
		return models.NewCommand("sh", "-c", line), nil
	}
	if len(args) == 0 {
		return models.Command{}, fmt.Errorf("empty command")
	}
	return models.NewCommand(args...), nil
}

// Run runs every action, including those after a failure, and returns the joined failures
func (r *TestRunner) Run(ctx context.Context, actions []models.TestAction) error {
	log := logging.OrNop(r.Logger)

	var errs []error
	for _, action := range actions {
		if r.Options.DryRun {
			if r.Out != nil {
				fmt.Fprintf(r.Out, "[%s] %s\n", action.Run, action.Cmd)
			}
			continue
		}

		cmd, err := SplitCommand(action.Cmd)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", action.Run, err))
			continue
		}

		log.Info("running tests", zap.String("runner", action.Run), zap.String("command", action.Cmd))
		if err := r.Runner.Run(ctx, r.Options.WorkingDir, cmd); err != nil {
			log.Error("tests failed", zap.String("runner", action.Run), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", action.Run, err))
		}
	}
	return errors.Join(errs...)
}
