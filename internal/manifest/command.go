package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"github.com/cenkalti/backoff/v4"
)

// commandTask runs a shell command as a task's work routine.
//
// Environment isolation is an allowlist: the command starts from an empty
// environment and sees only the variables declared in the manifest. Host
// variables, PATH included, are not passed through unless declared.
//
// Retries are a property of the work routine, not of the runner: the runner
// observes a single invocation that either eventually succeeds or returns
// the last attempt's error.
type commandTask struct {
	Name    string
	Command string
	Env     map[string]string
	WorkDir string
	Retries uint64
}

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Task     string
	ExitCode int
	Stderr   []byte
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("task %s: command exited with code %d", e.Task, e.ExitCode)
	if trimmed := strings.TrimSpace(string(e.Stderr)); trimmed != "" {
		msg += ": " + trimmed
	}
	return msg
}

// Run executes the command, retrying with exponential backoff when the task
// declares retries.
func (c *commandTask) Run(ctx context.Context) error {
	operation := func() error {
		return c.runOnce(ctx)
	}

	if c.Retries == 0 {
		return operation()
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.Retries)
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (c *commandTask) runOnce(ctx context.Context) error {
	cmd := exec.Command("sh", "-c", c.Command)
	cmd.Dir = c.WorkDir
	cmd.Env = isolatedEnv(c.Env)

	// Own process group, so cancellation can kill the whole command tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("task %s: starting command: %w", c.Name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return fmt.Errorf("task %s: cancelled: %w", c.Name, ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandError{Task: c.Name, ExitCode: exitErr.ExitCode(), Stderr: stderr.Bytes()}
		}
		return fmt.Errorf("task %s: waiting for command: %w", c.Name, err)
	}
}

// isolatedEnv builds the allowlist environment in sorted key order.
func isolatedEnv(declared map[string]string) []string {
	keys := make([]string, 0, len(declared))
	for k := range declared {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+declared[k])
	}
	return env
}
