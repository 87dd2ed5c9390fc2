// Package monitor samples CPU and memory usage of named process groups on
// the local host.
package monitor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SettleInterval is the wait between snapshotting the process table and
// reading CPU figures. A process CPU percentage is a delta since the previous
// read, so the first read only primes it.
const SettleInterval = 5 * time.Second

// Usage is the additive CPU and memory usage of zero or more processes.
type Usage struct {
	CPUPercent  float64
	MemoryBytes uint64
}

// Add returns the sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		CPUPercent:  u.CPUPercent + o.CPUPercent,
		MemoryBytes: u.MemoryBytes + o.MemoryBytes,
	}
}

// Report holds one Usage per monitored service group. The zero value is
// used when monitoring is disabled.
type Report struct {
	Postgres Usage
	BackendA Usage
	BackendB Usage
}

// Groups names the process-name substrings of each Report slot.
type Groups struct {
	Postgres string
	BackendA string
	BackendB string
}

// DefaultGroups matches the database and the two backends under test.
var DefaultGroups = Groups{
	Postgres: "postgres",
	BackendA: "node",
	BackendB: "actix",
}

// Process is one entry of the process table. Every read may fail when the
// process exits or is not inspectable.
type Process interface {
	Name() (string, error)
	CPUPercent() (float64, error)
	RSS() (uint64, error)
}

// Source lists the live process table.
type Source interface {
	Processes(ctx context.Context) ([]Process, error)
}

// Sampler measures the usage of Groups over a settle window.
type Sampler struct {
	Source Source
	Settle time.Duration
	Groups Groups
	Log    *slog.Logger
}

// NewSampler returns a Sampler over the host process table with the default
// groups and settle interval.
func NewSampler(log *slog.Logger) *Sampler {
	return &Sampler{
		Source: HostSource{Log: log},
		Settle: SettleInterval,
		Groups: DefaultGroups,
		Log:    log,
	}
}

// Sample snapshots the process table, waits the settle interval and then
// aggregates each group. It blocks for Settle unless ctx is cancelled first.
func (s *Sampler) Sample(ctx context.Context) (Report, error) {
	procs, err := s.Source.Processes(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "listing processes")
	}

	timer := time.NewTimer(s.Settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case <-timer.C:
	}

	return Report{
		Postgres: s.aggregate(procs, s.Groups.Postgres),
		BackendA: s.aggregate(procs, s.Groups.BackendA),
		BackendB: s.aggregate(procs, s.Groups.BackendB),
	}, nil
}

func (s *Sampler) aggregate(procs []Process, name string) Usage {
	return aggregate(procs, name, s.logger())
}

func (s *Sampler) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Aggregate sums the usage of every process whose name contains name.
// Processes with any unreadable field are left out.
func Aggregate(procs []Process, name string) Usage {
	return aggregate(procs, name, slog.Default())
}

func aggregate(procs []Process, name string, log *slog.Logger) Usage {
	var total Usage
	for _, p := range procs {
		pname, err := p.Name()
		if err != nil || !strings.Contains(pname, name) {
			continue
		}
		cpu, err := p.CPUPercent()
		if err != nil {
			log.Debug("skipping process", "group", name, "process", pname, "field", "cpu", "error", err)
			continue
		}
		rss, err := p.RSS()
		if err != nil {
			log.Debug("skipping process", "group", name, "process", pname, "field", "rss", "error", err)
			continue
		}
		total = total.Add(Usage{CPUPercent: cpu, MemoryBytes: rss})
	}
	return total
}
