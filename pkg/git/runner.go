package git

import (
	"context"
	"os"
	"os/exec"
)

// Command is one invocation of an external binary.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner runs external commands. Swapped out in tests.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecCommandRunner runs commands with os/exec and returns combined output.
type ExecCommandRunner struct{}

func (r ExecCommandRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	command := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		command.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		command.Env = append(os.Environ(), cmd.Env...)
	}
	return command.CombinedOutput()
}
