package taskrunner

import "fmt"

// Task is a named unit of work: a fixed sequence of shell commands that is
// executed after the listed dependencies have run.
type Task struct {
	Name string
	Desc string
	Env  map[string]string
	Deps []string
	Cmds []string
}

func (t *Task) String() string {
	return fmt.Sprintf("<Task %s: %s>", t.Name, t.Desc)
}

// TaskList maps names to each relevant task
type TaskList map[string]*Task
