package tool

import (
	"strings"

	"github.com/AlexandrKovin/RideShare/pkg/taskrunner"
)

// ServiceSet lists the infrastructure containers managed by the services-up
// and services-down targets, in the order they are passed to docker compose.
var ServiceSet = []string{"postgres", "redis", "minio", "vault", "vault-init", "rabbitmq"}

// Tasks returns the development targets. The set is fixed: every target is
// parameterless and runs its commands strictly in declaration order, stopping
// at the first failure.
func Tasks() taskrunner.TaskList {
	services := strings.Join(ServiceSet, " ")

	list := []*taskrunner.Task{
		{
			Name: "services-down",
			Desc: "Stop and remove the infrastructure containers",
			Cmds: []string{
				"docker compose stop " + services,
				"docker compose rm -f " + services,
			},
		},
		{
			Name: "services-up",
			Desc: "Recreate and start the infrastructure containers",
			Deps: []string{"services-down"},
			Cmds: []string{
				"docker compose up -d " + services,
			},
		},
		{
			Name: "makemigrate",
			Desc: "Generate a new migration from the schema diff",
			Cmds: []string{
				"atlas migrate diff",
			},
		},
		{
			Name: "migrate",
			Desc: "Apply all pending migrations",
			Cmds: []string{
				"atlas migrate apply",
			},
		},
		{
			Name: "lint",
			Desc: "Run the linters and apply fixes in place",
			Cmds: []string{
				"golangci-lint run --fix",
			},
		},
	}

	tasks := make(taskrunner.TaskList, len(list))
	for _, task := range list {
		tasks[task.Name] = task
	}

	return tasks
}
