// Package tool implements the development task CLI for RideShare.
package tool

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"

	"github.com/AlexandrKovin/RideShare/pkg/compose"
	"github.com/AlexandrKovin/RideShare/pkg/taskrunner"
)

var rootCmd = &cobra.Command{
	Use:   "tool [target...]",
	Short: "Development tasks for RideShare",
	Long: `This command bundles the development tasks for RideShare: managing the
infrastructure containers, generating and applying database migrations and
running the linters. Run it without arguments to list the available targets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		logger := zerolog.New(NewConsoleWriter())
		ctx := context.Background()
		ctx = taskrunner.WithLogger(ctx, &logger)

		wd, err := os.Getwd()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to retrieve the current working directory")
		}

		tasks := Tasks()
		if len(args) == 0 {
			printTargets(tasks)
			return nil
		}

		for _, name := range args {
			if _, ok := tasks[name]; !ok {
				logger.Fatal().Msgf("Target %s not found", name)
			}
		}

		// The container targets only pass service names to docker compose;
		// catch a manifest that doesn't declare them before we shell out.
		for _, name := range args {
			if task := tasks[name]; usesServices(task, tasks) {
				manifest, err := compose.FindManifest(wd)
				if err != nil {
					logger.Fatal().Err(err).Msg("Failed to locate the compose manifest")
				}

				if err := compose.VerifyServices(manifest, ServiceSet); err != nil {
					logger.Fatal().Err(err).Msgf("%s is incomplete", manifest)
				}
				break
			}
		}

		runner := &taskrunner.Runner{Dir: wd, DryRun: dryRun}
		for _, name := range args {
			err = runner.RunTask(ctx, name, tasks)
			if err != nil {
				logger.Error().Err(err).Msgf("Failed target %s", name)

				// pass the external tool's exit status through
				if status, ok := interp.IsExitStatus(eris.Cause(err)); ok {
					os.Exit(int(status))
				}
				os.Exit(1)
			}
		}

		return nil
	},
}

// usesServices reports whether the task or one of its dependencies operates
// on the service containers.
func usesServices(task *taskrunner.Task, tasks taskrunner.TaskList) bool {
	if task.Name == "services-up" || task.Name == "services-down" {
		return true
	}

	for _, dep := range task.Deps {
		if depTask, ok := tasks[dep]; ok && usesServices(depTask, tasks) {
			return true
		}
	}
	return false
}

func printTargets(tasks taskrunner.TaskList) {
	fmt.Println("Available targets:")

	maxNameLen := 0
	sortedNames := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if len(task.Name) > maxNameLen {
			maxNameLen = len(task.Name)
		}
		sortedNames = append(sortedNames, task.Name)
	}
	sort.Strings(sortedNames)

	for _, name := range sortedNames {
		fmt.Printf("  %s%s  %s\n", name, strings.Repeat(" ", maxNameLen-len(name)), tasks[name].Desc)
	}
}

func init() {
	rootCmd.Flags().BoolP("dry", "d", false, "Print the commands without executing them")
	rootCmd.AddCommand(fetchToolsCmd)
}

// Execute runs the CLI
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
