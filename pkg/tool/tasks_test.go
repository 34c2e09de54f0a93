package tool

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"

	"github.com/AlexandrKovin/RideShare/pkg/taskrunner"
)

var serviceArgs = []string{"postgres", "redis", "minio", "vault", "vault-init", "rabbitmq"}

func testCtx() context.Context {
	logger := zerolog.Nop()
	return taskrunner.WithLogger(context.Background(), &logger)
}

func runTarget(t *testing.T, target string, fail map[string]uint8) ([][]string, error) {
	t.Helper()

	calls := [][]string{}
	runner := &taskrunner.Runner{
		Exec: func(ctx context.Context, args []string) error {
			calls = append(calls, args)
			if len(args) > 2 {
				if status, ok := fail[args[2]]; ok {
					return interp.NewExitStatus(status)
				}
			}
			return nil
		},
	}

	err := runner.RunTask(testCtx(), target, Tasks())
	return calls, err
}

func TestServiceSet(t *testing.T) {
	assert.Equal(t, serviceArgs, ServiceSet)
}

func TestServicesDown(t *testing.T) {
	calls, err := runTarget(t, "services-down", nil)
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, append([]string{"docker", "compose", "stop"}, serviceArgs...), calls[0])
	assert.Equal(t, append([]string{"docker", "compose", "rm", "-f"}, serviceArgs...), calls[1])
}

func TestServicesUp(t *testing.T) {
	calls, err := runTarget(t, "services-up", nil)
	require.NoError(t, err)

	require.Len(t, calls, 3)
	assert.Equal(t, append([]string{"docker", "compose", "stop"}, serviceArgs...), calls[0])
	assert.Equal(t, append([]string{"docker", "compose", "rm", "-f"}, serviceArgs...), calls[1])
	assert.Equal(t, append([]string{"docker", "compose", "up", "-d"}, serviceArgs...), calls[2])
}

func TestServicesDownIdempotent(t *testing.T) {
	first, err := runTarget(t, "services-down", nil)
	require.NoError(t, err)

	second, err := runTarget(t, "services-down", nil)
	require.NoError(t, err)

	// no state is retained between invocations
	assert.Equal(t, first, second)
}

func TestSingleCallTargets(t *testing.T) {
	cases := []struct {
		target string
		want   []string
	}{
		{"makemigrate", []string{"atlas", "migrate", "diff"}},
		{"migrate", []string{"atlas", "migrate", "apply"}},
		{"lint", []string{"golangci-lint", "run", "--fix"}},
	}

	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			calls, err := runTarget(t, tc.target, nil)
			require.NoError(t, err)

			require.Len(t, calls, 1)
			assert.Equal(t, tc.want, calls[0])
		})
	}
}

func TestServicesDownStopFailureHaltsRemoval(t *testing.T) {
	calls, err := runTarget(t, "services-down", map[string]uint8{"stop": 1})
	require.Error(t, err)

	// rm is never issued once stop fails
	assert.Len(t, calls, 1)
}

func TestServicesUpDependencyFailure(t *testing.T) {
	calls, err := runTarget(t, "services-up", map[string]uint8{"rm": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency services-down")

	// up -d is never reached
	require.Len(t, calls, 2)
	assert.Equal(t, "rm", calls[1][2])
}

func TestTargetsRegistered(t *testing.T) {
	tasks := Tasks()

	for _, name := range []string{"services-down", "services-up", "makemigrate", "migrate", "lint"} {
		task, ok := tasks[name]
		require.True(t, ok, "target %s missing", name)
		assert.Equal(t, name, task.Name)
		assert.NotEmpty(t, task.Desc)
	}

	assert.Len(t, tasks, 5)
}
