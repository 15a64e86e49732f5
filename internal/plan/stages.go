// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"

	"github.com/kusari-oss/piper/internal/core/models"
	"go.uber.org/zap"
)

const checkoutAction = "actions/checkout@v4"

// pythonSetupInstall and nodeSetupInstall run whether or not the runtime was detected
const (
	pythonSetupInstall = "python -m pip install -U pip setuptools wheel pytest"
	nodeSetupInstall   = "if [ -f package.json ]; then if [ -f pnpm-lock.yaml ]; then corepack enable && pnpm i --frozen-lockfile; elif [ -f yarn.lock ]; then yarn install --frozen-lockfile; else npm ci || npm i; fi; fi"
)

func checkoutStep() models.Step {
	return models.Step{Uses: checkoutAction}
}

func setupSteps(opts Options) []models.Step {
	cfg := opts.Config
	return []models.Step{
		checkoutStep(),
		{Uses: "actions/setup-node@v4", With: map[string]string{"node-version": cfg.NodeVersion}},
		{Uses: "actions/setup-python@v5", With: map[string]string{"python-version": cfg.PythonVersion}},
		{Uses: "actions/setup-go@v5", With: map[string]string{"go-version": cfg.GoVersion}},
		{Name: "Setup Rust", Uses: "dtolnay/rust-toolchain@stable"},
		{Name: "Install Python deps", Run: pythonSetupInstall},
		{Name: "Install Node deps", Run: nodeSetupInstall},
	}
}

func testSteps(tests []models.TestAction) []models.Step {
	steps := []models.Step{checkoutStep()}
	for _, t := range tests {
		steps = append(steps, models.Step{
			Name: fmt.Sprintf("Run tests (%s)", t.Run),
			Run:  t.Cmd,
		})
	}
	return steps
}

func securitySteps(tools []string, opts Options) ([]models.Step, error) {
	steps := []models.Step{checkoutStep()}
	for _, id := range tools {
		tool, ok := opts.RuleSet.Tool(id)
		if !ok {
			return nil, fmt.Errorf("no step definition for security tool '%s'", id)
		}

		blocking := opts.Config.IsBlocking(id)
		if blocking {
			opts.Logger.Debug("security tool is blocking", zap.String("tool", id))
		}

		steps = append(steps, models.Step{
			Name: tool.Name,
			Run:  tool.Command(blocking),
			Env:  tool.Env,
		})
	}
	return steps, nil
}

func deploySteps(target models.DeployTarget) ([]models.Step, error) {
	steps := []models.Step{checkoutStep()}
	step, err := DeployStep(target)
	if err != nil {
		return nil, err
	}
	if step != nil {
		steps = append(steps, *step)
	}
	return steps, nil
}

// buildStages fills the fixed setup -> test -> security -> deploy template
func buildStages(tests []models.TestAction, tools []string, target models.DeployTarget, opts Options) ([]models.Stage, error) {
	security, err := securitySteps(tools, opts)
	if err != nil {
		return nil, err
	}
	deploy, err := deploySteps(target)
	if err != nil {
		return nil, err
	}

	return []models.Stage{
		{Name: models.StageSetup, Steps: setupSteps(opts)},
		{Name: models.StageTest, Needs: models.StageSetup, Steps: testSteps(tests)},
		{Name: models.StageSecurity, Needs: models.StageTest, Steps: security},
		{Name: models.StageDeploy, Needs: models.StageSecurity, Steps: deploy},
	}, nil
}

// ValidateStages checks that stages form the linear setup -> test -> security -> deploy
// chain and that deploy holds at most one action besides checkout.
func ValidateStages(stages []models.Stage) error {
	if len(stages) != len(models.StageOrder) {
		return fmt.Errorf("expected %d stages, got %d", len(models.StageOrder), len(stages))
	}

	for i, name := range models.StageOrder {
		stage := stages[i]
		if stage.Name != name {
			return fmt.Errorf("stage %d: expected '%s', got '%s'", i, name, stage.Name)
		}

		needs := ""
		if i > 0 {
			needs = models.StageOrder[i-1]
		}
		if stage.Needs != needs {
			return fmt.Errorf("stage '%s' must need '%s', got '%s'", name, needs, stage.Needs)
		}
	}

	actions := 0
	for _, step := range stages[len(stages)-1].Steps {
		if step.Uses != checkoutAction {
			actions++
		}
	}
	if actions > 1 {
		return fmt.Errorf("deploy stage has %d actions, at most one allowed", actions)
	}

	return nil
}
