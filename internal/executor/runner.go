// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/core/models"
	"go.uber.org/zap"
)

// Runner runs one command in a directory
type Runner interface {
	Run(ctx context.Context, dir string, cmd models.Command) error
}

// ExecRunner runs commands as local processes. Unless Verbose is set, the
// output of a failed command is attached to its error.
type ExecRunner struct {
	Verbose bool
	// Env is added to the current process environment
	Env    []string
	Logger *zap.Logger
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, dir string, cmd models.Command) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("empty command")
	}

	result, err := NewCommandExecutor(cmd.Args[0], cmd.Args[1:]).
		WithWorkingDir(dir).
		WithEnvironment(r.Env).
		WithVerbose(r.Verbose).
		WithLogger(logging.OrNop(r.Logger)).
		Execute(ctx)
	if err == nil {
		return nil
	}

	output := ""
	if result != nil && !r.Verbose {
		output = strings.TrimSpace(string(result.Output))
	}
	if output != "" {
		return fmt.Errorf("command '%s' failed: %w\n%s", cmd.String(), err, output)
	}
	return fmt.Errorf("command '%s' failed: %w", cmd.String(), err)
}
