// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Variables visible to rule conditions
const (
	VarDetection = "detection"
	VarOptions   = "options"
)

// CELEvaluator handles compilation and evaluation of CEL conditions
type CELEvaluator struct {
	env *cel.Env
}

// Condition is a compiled boolean CEL expression
type Condition struct {
	expression string
	program    cel.Program
}

// NewCELEvaluator creates a new CEL evaluator
func NewCELEvaluator() (*CELEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarDetection, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(VarOptions, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	return &CELEvaluator{env: env}, nil
}

// Compile parses and type-checks an expression once so it can be evaluated many times
func (e *CELEvaluator) Compile(expression string) (*Condition, error) {
	ast, issues := e.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error parsing expression: %w", issues.Err())
	}

	checked, issues := e.env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error type-checking expression: %w", issues.Err())
	}

	if out := checked.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("expression %q does not produce a boolean", expression)
	}

	program, err := e.env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("error compiling expression: %w", err)
	}

	return &Condition{expression: expression, program: program}, nil
}

// Expression returns the source text of the condition
func (c *Condition) Expression() string {
	return c.expression
}

// Evaluate runs the condition against a detection record map and option map
func (c *Condition) Evaluate(detection, options map[string]interface{}) (bool, error) {
	if detection == nil {
		detection = map[string]interface{}{}
	}
	if options == nil {
		options = map[string]interface{}{}
	}

	result, _, err := c.program.Eval(map[string]interface{}{
		VarDetection: detection,
		VarOptions:   options,
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating expression %q: %w", c.expression, err)
	}

	if result.Type() != types.BoolType {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean", c.expression)
	}

	return result.Value().(bool), nil
}
