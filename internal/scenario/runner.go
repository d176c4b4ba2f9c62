package scenario

import (
	"context"
	"errors"
)

// Props are the initial properties of an execution tree rooted at a
// scenario. Materialized scenarios always start with no children.
type Props struct {
	Children []Step
}

// RunSpec tells a Runner what to execute for one invocation.
type RunSpec struct {
	Key          string
	InitialProps Props
	Step         Step
}

// Runner executes one invocation. It owns the order in which the hook
// chains and the step run.
type Runner interface {
	Run(ctx context.Context, spec RunSpec, hooks *HookContext) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, spec RunSpec, hooks *HookContext) error

func (f RunnerFunc) Run(ctx context.Context, spec RunSpec, hooks *HookContext) error {
	return f(ctx, spec, hooks)
}

// SequentialRunner runs before hooks, the step, its children in order,
// then after hooks. After hooks still run when the step fails, but not
// when a before hook failed.
type SequentialRunner struct{}

func (SequentialRunner) Run(ctx context.Context, spec RunSpec, hooks *HookContext) error {
	if err := hooks.BeforeEach(ctx); err != nil {
		return err
	}
	stepErr := runSteps(ctx, spec, hooks)
	afterErr := hooks.AfterEach(ctx)
	return errors.Join(stepErr, afterErr)
}

func runSteps(ctx context.Context, spec RunSpec, hooks *HookContext) error {
	if spec.Step != nil {
		if err := spec.Step.Run(ctx, hooks.Params, hooks.Shared); err != nil {
			return err
		}
	}
	for _, child := range spec.InitialProps.Children {
		if err := child.Run(ctx, hooks.Params, hooks.Shared); err != nil {
			return err
		}
	}
	return nil
}
