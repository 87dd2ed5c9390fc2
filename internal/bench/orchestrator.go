// Package bench drives the benchmark sweep: every scenario, every
// concurrency level and both backends, strictly one run at a time.
package bench

import (
	"context"
	"log/slog"
	"time"

	"benchit/internal/config"
	"benchit/internal/monitor"
	"benchit/internal/report"
	"benchit/internal/runner"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Sampler measures process usage during a run.
type Sampler interface {
	Sample(ctx context.Context) (monitor.Report, error)
}

// Output receives the progress of a sweep.
type Output interface {
	// Scenario is called once before the first run of a scenario.
	Scenario(s Scenario)
	// Level is called before the runs of a concurrency level.
	Level(concurrency uint16)
	// Row is called after every completed run.
	Row(r RunResult)
	// Charts is called with the results of a completed scenario, in sweep
	// order.
	Charts(results []RunResult)
}

// MonitorDelayFor is how long to wait after starting a run of duration d
// before sampling, so the settle window lands in the second half of the
// run.
func MonitorDelayFor(d time.Duration) time.Duration {
	return d / 2
}

// Orchestrator runs the sweep.
type Orchestrator struct {
	Scenarios []Scenario
	Backends  []Backend
	Levels    []uint16
	Duration  time.Duration

	Invoker runner.Invoker
	Parser  report.Parser
	Output  Output

	// Sampler is nil when monitoring is disabled.
	Sampler      Sampler
	MonitorDelay time.Duration

	Log *slog.Logger
}

// New returns an Orchestrator for cfg. A nil sampler disables monitoring.
func New(cfg config.Config, inv runner.Invoker, sampler Sampler, out Output, log *slog.Logger) *Orchestrator {
	d := time.Duration(cfg.DurationSeconds) * time.Second
	o := &Orchestrator{
		Scenarios:    Scenarios,
		Backends:     Backends(cfg),
		Levels:       Levels(cfg.MaxConcurrency),
		Duration:     d,
		Invoker:      inv,
		Parser:       report.Wrk{},
		Output:       out,
		MonitorDelay: MonitorDelayFor(d),
		Log:          log,
	}
	if cfg.Monitor {
		o.Sampler = sampler
	}
	return o
}

// Run executes the full sweep. The first failure aborts it and no charts
// are printed for the scenario in progress.
func (o *Orchestrator) Run(ctx context.Context) error {
	for _, sc := range o.Scenarios {
		results, err := o.runScenario(ctx, sc)
		if err != nil {
			return errors.Wrapf(err, "scenario %q", sc.Name)
		}
		o.Output.Charts(results)
	}
	return nil
}

func (o *Orchestrator) runScenario(ctx context.Context, sc Scenario) ([]RunResult, error) {
	o.Output.Scenario(sc)
	o.logger().Info("starting scenario", "scenario", sc.Name, "query", sc.Query, "levels", len(o.Levels))

	results := make([]RunResult, 0, len(o.Levels)*len(o.Backends))
	for _, c := range o.Levels {
		o.Output.Level(c)
		for _, b := range o.Backends {
			r, err := o.runOne(ctx, sc, b, c)
			if err != nil {
				return nil, errors.Wrapf(err, "%s at concurrency %d", b.Name, c)
			}
			o.Output.Row(r)
			results = append(results, r)
		}
	}
	return results, nil
}

// runOne invokes the generator and, when monitoring, samples concurrently.
// Both must finish before the result exists; a failure of either cancels
// the other, which kills the generator.
func (o *Orchestrator) runOne(ctx context.Context, sc Scenario, b Backend, c uint16) (RunResult, error) {
	job := runner.Job{Concurrency: c, URL: b.BaseURL + sc.Query, Duration: o.Duration}

	var (
		out       []byte
		resources monitor.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out, err = o.Invoker.Invoke(gctx, job)
		return err
	})
	if o.Sampler != nil {
		g.Go(func() error {
			if err := sleep(gctx, o.MonitorDelay); err != nil {
				return err
			}
			var err error
			resources, err = o.Sampler.Sample(gctx)
			return errors.Wrap(err, "sampling processes")
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}

	m, err := o.Parser.Parse(out)
	if err != nil {
		if errors.Is(err, report.ErrDecode) {
			return RunResult{}, errors.Wrap(runner.ErrExternalTool, err.Error())
		}
		return RunResult{}, errors.Wrap(err, "parsing report")
	}

	o.logger().Debug("run complete", "scenario", sc.Name, "backend", b.Name, "concurrency", c,
		"latency_ms", m.LatencyMs, "rps", m.RequestsPerSec)

	return RunResult{
		Scenario:    sc.Name,
		Backend:     b.Name,
		Concurrency: c,
		Resources:   resources,
		Measurement: m,
	}, nil
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log == nil {
		return slog.Default()
	}
	return o.Log
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
