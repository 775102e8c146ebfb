//go:build !deadlock_test

// Package lock provides the mutex types used across the module. Builds with
// the `deadlock_test` tag swap them for go-deadlock implementations which
// report lock ordering issues and long waits.
package lock

import "sync"

type Mutex struct {
	sync.Mutex
}
