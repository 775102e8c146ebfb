package utils

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// CommandResult holds the captured output of a finished command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// RunCommand runs given command with given arguments on given CWD.
// stdin of the command is always the null device so it can never block on
// interactive input. stdout and stderr are captured and returned even when
// the command fails. Returned error wraps *exec.ExitError if the process ran
// and exited unsuccessfully, any other error means the process could not be
// started or waited for.
func RunCommand(ctx context.Context, log *slog.Logger, envs []string, cwd string, command string, args ...string) (CommandResult, error) {
	cmdStr := command + " " + strings.Join(args, " ")
	log.Log(ctx, -8, "running command", "cwd", cwd, "cmd", cmdStr)

	cmd := exec.CommandContext(ctx, command, args...)
	// force kill git & child process 5 seconds after sending it sigterm (when ctx is cancelled/timed out)
	cmd.WaitDelay = 5 * time.Second
	if cwd != "" {
		cmd.Dir = cwd
	}
	// nil Stdin reads from os.DevNull
	cmd.Stdin = nil

	outbuf := bytes.NewBuffer(nil)
	errbuf := bytes.NewBuffer(nil)
	cmd.Stdout = outbuf
	cmd.Stderr = errbuf

	// If Env is nil, the new process uses the current process's environment.
	if len(envs) > 0 {
		cmd.Env = envs
	}

	start := time.Now()
	err := cmd.Run()

	res := CommandResult{
		Stdout:   strings.TrimSpace(outbuf.String()),
		Stderr:   strings.TrimSpace(errbuf.String()),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		err = ctx.Err()
	}
	if err != nil {
		return res, fmt.Errorf("Run(%s): %w", cmdStr, err)
	}
	log.Log(ctx, -8, "command result", "stdout", res.Stdout, "stderr", res.Stderr, "time", res.Duration)

	return res, nil
}
