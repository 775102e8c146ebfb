package syncer

import (
	"errors"
	"os"
	"syscall"
)

// Job describes one synchronization unit. A Job is a value and is never
// modified once created.
type Job struct {
	// Path is the local destination of the repository, absolute or
	// relative to the working directory of the process.
	Path string
	// Remote is the URL the repository can be cloned from.
	// empty Remote means Path must already exist and is only updated.
	Remote string
}

// HasRemote returns true if job can be cloned when target is missing
func (j Job) HasRemote() bool {
	return j.Remote != ""
}

// Operation is the action taken for a job. It is decided before any
// process is started.
type Operation int

const (
	OpUpdate Operation = iota
	OpClone
	OpSkipCollision
	OpSkipMissingSource
)

func (op Operation) String() string {
	switch op {
	case OpUpdate:
		return "update"
	case OpClone:
		return "clone"
	case OpSkipCollision:
		return "skip-collision"
	case OpSkipMissingSource:
		return "skip-missing-source"
	}
	return "unknown"
}

// Skipped returns true if operation never runs git
func (op Operation) Skipped() bool {
	return op == OpSkipCollision || op == OpSkipMissingSource
}

// PlanOperation inspects the target path of the job and returns operation
// required to sync it. A file on the path, including a file reached with a
// trailing separator, is a collision. Any other error from stat is treated
// as a missing path.
func PlanOperation(job Job) Operation {
	fi, err := os.Stat(job.Path)
	switch {
	case err == nil && fi.IsDir():
		return OpUpdate
	case err == nil, errors.Is(err, syscall.ENOTDIR):
		return OpSkipCollision
	case job.HasRemote():
		return OpClone
	default:
		return OpSkipMissingSource
	}
}
