package syncer

import "time"

// Kind classifies the result of a job
type Kind int

const (
	// Synced git command succeeded
	Synced Kind = iota
	// Skipped no command was run, see ErrPathCollision and ErrMissingSource
	Skipped
	// CommandFailed git ran and exited with non-zero status
	CommandFailed
	// ExecutionError git could not be run, was killed by a signal or
	// there was no directory to run it from
	ExecutionError
)

func (k Kind) String() string {
	switch k {
	case Synced:
		return "synced"
	case Skipped:
		return "skipped"
	case CommandFailed:
		return "command_failed"
	case ExecutionError:
		return "execution_error"
	}
	return "unknown"
}

// Outcome is the result of executing a single job
type Outcome struct {
	Kind      Kind
	Operation Operation
	Err       error
	Duration  time.Duration
}

// Failed returns true for every outcome other than Synced. Skipped jobs are
// failures too as there is no way to tell an intentional skip from a
// misconfigured path.
func (o Outcome) Failed() bool {
	return o.Kind != Synced
}
