package taskrunner

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func testCtx() context.Context {
	logger := zerolog.Nop()
	return WithLogger(context.Background(), &logger)
}

// captureExec records every spawned command instead of executing it. Commands
// listed in fail return the given exit status.
func captureExec(calls *[][]string, fail map[string]uint8) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		*calls = append(*calls, args)
		if status, ok := fail[args[0]]; ok {
			return interp.NewExitStatus(status)
		}
		return nil
	}
}

func TestRunTaskSequence(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{Exec: captureExec(&calls, nil)}

	tasks := TaskList{
		"build": {
			Name: "build",
			Cmds: []string{"compile --fast", "package out"},
		},
	}

	err := runner.RunTask(testCtx(), "build", tasks)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"compile", "--fast"}, calls[0])
	assert.Equal(t, []string{"package", "out"}, calls[1])
}

func TestRunTaskDependencies(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{Exec: captureExec(&calls, nil)}

	tasks := TaskList{
		"clean": {
			Name: "clean",
			Cmds: []string{"sweep"},
		},
		"build": {
			Name: "build",
			Deps: []string{"clean"},
			Cmds: []string{"compile"},
		},
	}

	err := runner.RunTask(testCtx(), "build", tasks)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"sweep"}, calls[0])
	assert.Equal(t, []string{"compile"}, calls[1])
}

func TestRunTaskNoStateBetweenInvocations(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{Exec: captureExec(&calls, nil)}

	tasks := TaskList{
		"clean": {
			Name: "clean",
			Cmds: []string{"sweep"},
		},
	}

	ctx := testCtx()
	require.NoError(t, runner.RunTask(ctx, "clean", tasks))
	require.NoError(t, runner.RunTask(ctx, "clean", tasks))

	// the second invocation issues the same call again
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
}

func TestRunTaskUnknown(t *testing.T) {
	runner := &Runner{Exec: captureExec(&[][]string{}, nil)}

	err := runner.RunTask(testCtx(), "nope", TaskList{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunTaskRecursion(t *testing.T) {
	runner := &Runner{Exec: captureExec(&[][]string{}, nil)}

	tasks := TaskList{
		"a": {Name: "a", Deps: []string{"b"}},
		"b": {Name: "b", Deps: []string{"a"}},
	}

	err := runner.RunTask(testCtx(), "a", tasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursively")
}

func TestRunTaskStopsAtFirstFailure(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{Exec: captureExec(&calls, map[string]uint8{"compile": 3})}

	tasks := TaskList{
		"build": {
			Name: "build",
			Cmds: []string{"compile", "package out"},
		},
	}

	err := runner.RunTask(testCtx(), "build", tasks)
	require.Error(t, err)

	// the failing call's status is surfaced as-is and the remaining step is skipped
	status, ok := interp.IsExitStatus(err)
	require.True(t, ok)
	assert.Equal(t, uint8(3), status)
	assert.Len(t, calls, 1)
}

func TestRunTaskFailingDependency(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{Exec: captureExec(&calls, map[string]uint8{"sweep": 1})}

	tasks := TaskList{
		"clean": {
			Name: "clean",
			Cmds: []string{"sweep"},
		},
		"build": {
			Name: "build",
			Deps: []string{"clean"},
			Cmds: []string{"compile"},
		},
	}

	err := runner.RunTask(testCtx(), "build", tasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency clean")
	assert.Len(t, calls, 1)
}

func TestRunTaskDryRun(t *testing.T) {
	calls := [][]string{}
	runner := &Runner{DryRun: true, Exec: captureExec(&calls, nil)}

	tasks := TaskList{
		"build": {
			Name: "build",
			Cmds: []string{"compile", "package out"},
		},
	}

	err := runner.RunTask(testCtx(), "build", tasks)
	require.NoError(t, err)
	assert.Empty(t, calls)
}
