package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"benchit/internal/bench"
	"benchit/internal/chart"
	"benchit/internal/config"
	"benchit/internal/monitor"
	"benchit/internal/runner"
)

// Start runs the full sweep described by cfg, printing the report to out.
func Start(ctx context.Context, cfg config.Config, out io.Writer, log *slog.Logger) error {
	inv, err := newInvoker(cfg, log)
	if err != nil {
		return err
	}

	var sampler bench.Sampler
	if cfg.Monitor {
		sampler = monitor.NewSampler(log)
	}

	printHeader(out, cfg)
	o := bench.New(cfg, inv, sampler, &chart.Printer{W: out, Width: cfg.ChartWidth}, log)

	start := time.Now()
	if err := o.Run(ctx); err != nil {
		return err
	}
	log.Info("sweep complete", "elapsed", time.Since(start).Round(time.Second))
	return nil
}

func newInvoker(cfg config.Config, log *slog.Logger) (runner.Invoker, error) {
	if cfg.Tool == config.ToolBuiltin {
		return &runner.Builtin{Log: log}, nil
	}
	return runner.NewWrk(cfg.Tool, log)
}

func printHeader(w io.Writer, cfg config.Config) {
	levels := bench.Levels(cfg.MaxConcurrency)
	runs := len(levels) * len(bench.Scenarios) * 2
	total := time.Duration(runs) * time.Duration(cfg.DurationSeconds) * time.Second

	fmt.Fprintf(w, "\n🚀 STARTING BENCHMARK SWEEP\n")
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Node       : %s\n", cfg.BaseURL(cfg.NodePort))
	fmt.Fprintf(w, "Actix      : %s\n", cfg.BaseURL(cfg.ActixPort))
	fmt.Fprintf(w, "Levels     : %v\n", levels)
	fmt.Fprintf(w, "Duration   : %ds per run, %d runs (~%s)\n", cfg.DurationSeconds, runs, total)
	fmt.Fprintf(w, "Generator  : %s\n", cfg.Tool)
	fmt.Fprintf(w, "Monitor    : %t\n", cfg.Monitor)
	fmt.Fprintf(w, "======================================================================\n\n")
}
