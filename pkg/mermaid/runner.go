package mermaid

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen -source=runner.go -destination=../../mocks/mockmermaid/runner_mock.gen.go -package mockmermaid

// DefaultWaitDelay bounds the wait for the output pipes after the process is killed
const DefaultWaitDelay = time.Second

// Command describes a single subprocess run
type Command struct {
	Path string
	Args []string
	Env  []string
}

// Result of the subprocess run
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes the renderer subprocess.
type Runner interface {
	// Run starts the command and waits for it to exit.
	// Non-zero exit code is reported in Result, the error is returned
	// only when the process failed to start or was killed because ctx is done.
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

type execRunner struct {
	waitDelay time.Duration
}

// NewExecRunner returns Runner that uses os/exec,
// the whole process group is killed when ctx is done.
func NewExecRunner() Runner {
	return &execRunner{waitDelay: DefaultWaitDelay}
}

func (r *execRunner) Run(ctx context.Context, c *Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = c.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = r.waitDelay

	err := cmd.Run()
	res := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, errors.WithMessage(ctxErr, err.Error())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	// the process exited, but a child kept the pipes open
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
		return res, nil
	}
	return res, errors.WithStack(err)
}
