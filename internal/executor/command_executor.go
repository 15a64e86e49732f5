// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/core/models"
	"go.uber.org/zap"
)

// CommandExecutor runs a single command as a local process
type CommandExecutor struct {
	command     string
	args        []string
	workingDir  string
	environment []string
	verbose     bool
	logger      *zap.Logger
}

// CommandResult holds the result of command execution
type CommandResult struct {
	// Output is stdout and stderr interleaved
	Output     []byte
	Error      error
	ExitStatus int
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor(command string, args []string) *CommandExecutor {
	return &CommandExecutor{
		command: command,
		args:    args,
		logger:  zap.NewNop(),
	}
}

// WithWorkingDir sets the working directory
func (e *CommandExecutor) WithWorkingDir(dir string) *CommandExecutor {
	e.workingDir = dir
	return e
}

// WithEnvironment adds environment variables on top of the current process environment
func (e *CommandExecutor) WithEnvironment(env []string) *CommandExecutor {
	e.environment = env
	return e
}

// WithVerbose streams process output to stdout/stderr as well as capturing it
func (e *CommandExecutor) WithVerbose(verbose bool) *CommandExecutor {
	e.verbose = verbose
	return e
}

// WithLogger sets the logger
func (e *CommandExecutor) WithLogger(logger *zap.Logger) *CommandExecutor {
	e.logger = logging.OrNop(logger)
	return e
}

// Execute runs the command and returns its output. The process is killed when ctx is done.
func (e *CommandExecutor) Execute(ctx context.Context) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, e.command, e.args...)

	var output, stderr bytes.Buffer
	if e.verbose {
		cmd.Stdout = io.MultiWriter(&output, os.Stdout)
		cmd.Stderr = io.MultiWriter(&output, &stderr, os.Stderr)
	} else {
		cmd.Stdout = &output
		cmd.Stderr = io.MultiWriter(&output, &stderr)
	}

	if e.workingDir != "" {
		cmd.Dir = e.workingDir
	}
	if len(e.environment) > 0 {
		cmd.Env = append(os.Environ(), e.environment...)
	}

	line := models.NewCommand(append([]string{e.command}, e.args...)...).String()
	e.logger.Debug("executing", zap.String("command", line), zap.String("dir", e.workingDir))

	err := cmd.Run()

	result := &CommandResult{
		Output: output.Bytes(),
		Error:  err,
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		result.ExitStatus = exitError.ExitCode()
		e.logger.Debug("command failed",
			zap.String("command", line),
			zap.Int("exit_status", result.ExitStatus),
			zap.ByteString("stderr", stderr.Bytes()))
	}

	return result, err
}
