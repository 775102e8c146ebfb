package syncpool

import (
	"fmt"
	"runtime"
)

const defaultQueueSize = 1000

// Config is the configuration to create Pool
type Config struct {
	// Concurrency is the number of workers, default is number of CPUs
	Concurrency int
	// QueueSize is the number of jobs that can be queued before the
	// producer blocks on workers, default is 1000
	QueueSize int
}

// DefaultConcurrency is used when configured concurrency is not positive
func DefaultConcurrency() int {
	return runtime.NumCPU()
}

// validateAndApplyDefaults will apply defaults to non-positive values.
func (c *Config) validateAndApplyDefaults() error {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency()
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}

	return nil
}
