// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"sync"

	"github.com/kusari-oss/piper/internal/core/models"
	"github.com/stretchr/testify/mock"
)

// MockRunner provides a mock implementation of the executor Runner interface.
// Without expectations it succeeds and only records the commands it saw.
type MockRunner struct {
	mock.Mock

	mu    sync.Mutex
	lines []string
}

// Run mocks the Run method
func (m *MockRunner) Run(ctx context.Context, dir string, cmd models.Command) error {
	m.mu.Lock()
	m.lines = append(m.lines, cmd.String())
	m.mu.Unlock()

	// If expectations are set, use those
	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx, dir, cmd)
		return args.Error(0)
	}
	return nil
}

// Lines returns the command lines seen so far, in call order
func (m *MockRunner) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}
