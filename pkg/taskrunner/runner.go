package taskrunner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	runtimeCtxKey struct{}
	runtimeCtx    struct {
		runTasks map[string]bool
	}
)

func getRuntimeCtx(ctx context.Context) *runtimeCtx {
	return ctx.Value(runtimeCtxKey{}).(*runtimeCtx)
}

func getTaskEnv(task *Task) expand.Environ {
	envVars := os.Environ()

	for name, value := range task.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

// Runner executes tasks. The zero value runs commands in the current
// directory with the default exec handler.
type Runner struct {
	// Dir is the working directory for all task commands.
	Dir string
	// DryRun logs the commands without executing them.
	DryRun bool
	// Exec overrides the handler used to spawn external processes.
	// Tests use this to observe the issued calls.
	Exec interp.ExecHandlerFunc
}

// RunTask executes the given task after running its dependencies.
// Each invocation starts with a clean slate; nothing is remembered between
// calls, so running the same task twice issues the same external calls twice.
func (r *Runner) RunTask(ctx context.Context, task string, tasks TaskList) error {
	rctx := runtimeCtx{
		runTasks: make(map[string]bool),
	}

	ctx = context.WithValue(ctx, runtimeCtxKey{}, &rctx)
	taskMeta, found := tasks[task]
	if !found {
		return eris.Errorf("Task %s not found", task)
	}

	return r.runTaskInternal(ctx, taskMeta, tasks)
}

func (r *Runner) runTaskInternal(ctx context.Context, task *Task, tasks TaskList) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rctx := getRuntimeCtx(ctx)
	status, ok := rctx.runTasks[task.Name]
	if ok {
		if status {
			// this task has already been run during this invocation
			log(ctx).Debug().Msgf("Task %s already run", task.Name)
			return nil
		}

		return eris.Errorf("Task %s was called recursively", task.Name)
	}

	rctx.runTasks[task.Name] = false

	for _, dep := range task.Deps {
		if !rctx.runTasks[dep] {
			depTask, ok := tasks[dep]
			if !ok {
				return eris.Errorf("Task %s not found", dep)
			}

			err := r.runTaskInternal(ctx, depTask, tasks)
			if err != nil {
				return eris.Wrapf(err, "Task %s failed due to its dependency %s", task.Name, dep)
			}
		}
	}

	execHandler := r.Exec
	if execHandler == nil {
		execHandler = interp.DefaultExecHandler(2)
	}

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(getTaskEnv(task)),
		interp.ExecHandler(execHandler),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	parser := syntax.NewParser()
	printer := syntax.NewPrinter(
		syntax.Minify(true),
	)
	strBuffer := strings.Builder{}

	for idx, item := range task.Cmds {
		result, err := parser.Parse(strings.NewReader(item), fmt.Sprintf("%s:%d", task.Name, idx))
		if err != nil {
			return eris.Wrapf(err, "failed to parse command %s", item)
		}

		for _, stm := range result.Stmts {
			strBuffer.Reset()
			printer.Print(&strBuffer, stm)
			log(ctx).Info().
				Str("task", task.Name).
				Bool("command", true).
				Msg(strBuffer.String())

			if !r.DryRun {
				err = runner.Run(ctx, stm)
				if err != nil {
					return err
				}

				if runner.Exited() {
					return nil
				}
			}
		}

		if err = ctx.Err(); err != nil {
			return err
		}
	}

	rctx.runTasks[task.Name] = true
	return nil
}
