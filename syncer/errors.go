package syncer

import (
	"errors"
	"fmt"
)

var (
	ErrPathCollision      = errors.New("path exists but is not a directory")
	ErrMissingSource      = errors.New("path doesn't exist and no clone URL defined")
	ErrNoAncestor         = errors.New("no existing ancestor directory")
	ErrTerminatedBySignal = errors.New("git command was killed externally with a signal")
)

// CommandError is returned when git ran to completion but exited with
// non-zero status
type CommandError struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git command failed with status %d", e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// SpawnError is returned when git could not be started or its exit status
// could not be obtained
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("unable to get exit status of git command: %s", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
