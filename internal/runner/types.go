package runner

import (
	"context"
	"time"
)

// Job describes one load generator run against one URL.
type Job struct {
	Concurrency uint16
	URL         string
	Duration    time.Duration
}

// Threads is the generator thread hint for a concurrency level, never
// less than one.
func (j Job) Threads() int {
	return int(j.Concurrency)/10 + 1
}

// Invoker runs a load generator to completion and returns its report text.
type Invoker interface {
	Invoke(ctx context.Context, job Job) ([]byte, error)
}
