package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner runs an external command and collects its output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// CommandRunner is the exec.CommandContext implementation.
type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// IsNotFound reports whether the command binary could not be started.
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

func DefaultRunner() Runner {
	return CommandRunner{}
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error)

func (f RunnerFunc) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, dir, name, args...)
}
