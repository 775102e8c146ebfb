package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"github.com/utilitywarehouse/ghopac/internal/utils"
)

var defaultGitExecutablePath = exec.Command("git").String()

// ExecutorConfig is the read only configuration shared by all workers
type ExecutorConfig struct {
	// GitExec is the git binary to run, default is git found on PATH
	GitExec string
	// Envs are passed to every git command. If empty the environment of
	// the process is used.
	Envs []string
	// Verbose enables a log line for every successfully synced job
	Verbose bool
}

// Executor runs the git command required to sync a Job.
// An Executor is safe for concurrent use by multiple goroutines.
type Executor struct {
	cmd     string
	envs    []string
	verbose bool
	log     *slog.Logger
}

// NewExecutor creates Executor from given config.
func NewExecutor(conf ExecutorConfig, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}

	cmd := conf.GitExec
	if cmd == "" {
		cmd = defaultGitExecutablePath
	}

	envs := slices.Clone(conf.Envs)
	if len(envs) == 0 {
		envs = os.Environ()
	}
	// git must never wait on a credential prompt
	envs = append(envs, "GIT_TERMINAL_PROMPT=0")

	return &Executor{
		cmd:     cmd,
		envs:    envs,
		verbose: conf.Verbose,
		log:     log,
	}
}

// Execute syncs given job and blocks until git command exits.
// Execute never retries, outcome is final for the job.
func (e *Executor) Execute(ctx context.Context, job Job) Outcome {
	log := e.log.With("path", job.Path)

	op := PlanOperation(job)
	out := e.run(ctx, log, job, op)

	recordSync(job.Path, out)

	switch {
	case !out.Failed():
		if e.verbose {
			if op == OpClone {
				log.Info("[OK] cloned", "remote", job.Remote, "time", out.Duration)
			} else {
				log.Info("[OK] updated", "time", out.Duration)
			}
		}
	case out.Kind == CommandFailed:
		var cmdErr *CommandError
		errors.As(out.Err, &cmdErr)
		log.Error("[FAILED] git command failed", "op", op, "remote", job.Remote,
			"status", cmdErr.ExitCode, "stdout", cmdErr.Stdout, "stderr", cmdErr.Stderr)
	default:
		log.Error("[FAILED] unable to sync", "op", op, "remote", job.Remote, "err", out.Err)
	}

	return out
}

func (e *Executor) run(ctx context.Context, log *slog.Logger, job Job, op Operation) Outcome {
	switch op {
	case OpSkipCollision:
		return Outcome{Kind: Skipped, Operation: op, Err: ErrPathCollision}
	case OpSkipMissingSource:
		return Outcome{Kind: Skipped, Operation: op, Err: ErrMissingSource}
	}

	cwd, err := ClosestAncestorDir(job.Path)
	if err != nil {
		return Outcome{Kind: ExecutionError, Operation: op, Err: fmt.Errorf("unable to find working dir for %s: %w", job.Path, err)}
	}

	var args []string
	switch op {
	case OpUpdate:
		// git pull --prune
		args = []string{"pull", "--prune"}
	case OpClone:
		// target must be absolute as cwd is an ancestor of it
		dst, err := filepath.Abs(job.Path)
		if err != nil {
			return Outcome{Kind: ExecutionError, Operation: op, Err: &SpawnError{Err: err}}
		}
		// git clone <remote> <path>
		args = []string{"clone", job.Remote, dst}
	}

	res, err := utils.RunCommand(ctx, log, e.envs, cwd, e.cmd, args...)
	return classify(op, res, err)
}

// classify maps result of the git command to the outcome of the job.
// exit code is -1 when the process was killed by a signal.
func classify(op Operation, res utils.CommandResult, err error) Outcome {
	out := Outcome{Kind: Synced, Operation: op, Duration: res.Duration}
	if err == nil {
		return out
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && res.ExitCode == -1:
		out.Kind = ExecutionError
		out.Err = fmt.Errorf("%w: %w", ErrTerminatedBySignal, err)
	case errors.As(err, &exitErr):
		out.Kind = CommandFailed
		out.Err = &CommandError{
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      err,
		}
	default:
		out.Kind = ExecutionError
		out.Err = &SpawnError{Err: err}
	}
	return out
}
