// Package chart renders benchmark results as a tab separated table and as
// proportional ASCII bar charts.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"benchit/internal/bench"
	"benchit/internal/styles"
)

// Group is a run of consecutive results sharing a scenario and a
// concurrency level.
type Group struct {
	Scenario    string
	Concurrency uint16
	Results     []bench.RunResult
}

// GroupResults splits results into groups of consecutive entries with equal
// (scenario, concurrency) keys. Entries of one key must be adjacent; a key
// that reappears later starts a new group.
func GroupResults(results []bench.RunResult) []Group {
	var groups []Group
	for _, r := range results {
		n := len(groups)
		if n > 0 && groups[n-1].Scenario == r.Scenario && groups[n-1].Concurrency == r.Concurrency {
			groups[n-1].Results = append(groups[n-1].Results, r)
			continue
		}
		groups = append(groups, Group{
			Scenario:    r.Scenario,
			Concurrency: r.Concurrency,
			Results:     []bench.RunResult{r},
		})
	}
	return groups
}

// Bar is the length of the bar for value on a scale where max spans width
// characters. Every bar is at least one character long.
func Bar(value, max float64, width int) int {
	if max <= 0 {
		return 1
	}
	return int(math.Round(value*float64(width)/max)) + 1
}

// Charts prints a latency chart and a throughput chart for results. Both
// share one scale across all groups: the maxima of the whole list.
func Charts(w io.Writer, results []bench.RunResult, width int) {
	st := styles.For(w)

	var maxLat, maxRPS float64
	for _, r := range results {
		maxLat = math.Max(maxLat, r.Measurement.LatencyMs)
		maxRPS = math.Max(maxRPS, float64(r.Measurement.RequestsPerSec))
	}
	groups := GroupResults(results)

	fmt.Fprintf(w, "\n%s\n", st.Title.Render("Latency in ms (lower is better)"))
	chart(w, st, groups, width, maxLat, func(r bench.RunResult) float64 {
		return r.Measurement.LatencyMs
	})

	fmt.Fprintf(w, "\n%s\n", st.Title.Render("Requests per second (higher is better)"))
	chart(w, st, groups, width, maxRPS, func(r bench.RunResult) float64 {
		return float64(r.Measurement.RequestsPerSec)
	})
}

func chart(w io.Writer, st styles.Styles, groups []Group, width int, max float64, value func(bench.RunResult) float64) {
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n", st.Group.Render(fmt.Sprintf("concurrent load %d", g.Concurrency)))
		for _, r := range g.Results {
			bar := strings.Repeat("*", Bar(value(r), max, width))
			fmt.Fprintf(w, "%-6s |%-*s|\n", r.Backend, width+2, bar)
		}
	}
}

// Printer writes the console report of a sweep to W.
type Printer struct {
	W     io.Writer
	Width int
}

func (p *Printer) Scenario(s bench.Scenario) {
	st := styles.For(p.W)
	fmt.Fprintln(p.W, st.Scenario.Render("Starting test /tasks"+s.Query))
	Header(p.W)
}

func (p *Printer) Level(concurrency uint16) {
	fmt.Fprintf(p.W, "concurrent load = %d\n", concurrency)
}

func (p *Printer) Row(r bench.RunResult) {
	Row(p.W, r)
}

func (p *Printer) Charts(results []bench.RunResult) {
	Charts(p.W, results, p.Width)
}
