package execution

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Launcher starts an external evaluation process and waits for it. Failures
// are reported inside the Result, never as a returned error: the preflight
// pipeline treats a broken run as data and falls back to a conservative
// recommendation.
type Launcher interface {
	Launch(ctx context.Context, req Request) Result
}

// Request describes one process launch.
type Request struct {
	// Argv is the command and its arguments. Must be non-empty.
	Argv []string

	// Dir is the working directory. Empty means the caller's.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Timeout is the hard wall clock for the process. Zero means no
	// timeout beyond ctx.
	Timeout time.Duration
}

// Result captures everything a launch produced. Exactly one of the failure
// signals applies: LaunchErr when the process never ran, TimedOut when the
// wall clock killed it, a nonzero ExitCode when it ran and failed.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool

	// LaunchErr is set when the process could not be started at all
	// (missing binary, bad working directory).
	LaunchErr error
}

// Succeeded reports a clean zero-exit run.
func (r Result) Succeeded() bool {
	return r.LaunchErr == nil && !r.TimedOut && r.ExitCode == 0
}

// CombinedOutput joins stdout and stderr for pattern-matching fallbacks.
func (r Result) CombinedOutput() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// LastStderrLine returns the last non-empty line of stderr, the most likely
// place a runner prints its fatal message. Empty when stderr carried
// nothing.
func (r Result) LastStderrLine() string {
	lines := strings.Split(r.Stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// ExecLauncher runs processes with os/exec, enforcing the request timeout
// through the command context.
type ExecLauncher struct{}

// NewExecLauncher creates the default process launcher.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

func (l *ExecLauncher) Launch(ctx context.Context, req Request) Result {
	if len(req.Argv) == 0 {
		return Result{ExitCode: -1, LaunchErr: errors.New("empty command")}
	}

	runCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, req.Argv[0], req.Argv[1:]...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(cmd.Environ(), req.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case res.TimedOut:
		// Killed before it finished starting; the timeout flag already
		// explains the failure.
		res.ExitCode = -1
	default:
		res.ExitCode = -1
		res.LaunchErr = err
	}
	return res
}
