package bench

import (
	"benchit/internal/config"
	"benchit/internal/monitor"
	"benchit/internal/report"
)

// Scenario is one request shape tested across the whole sweep.
type Scenario struct {
	Name  string
	Query string
}

// Scenarios are run in this order.
var Scenarios = []Scenario{
	{Name: "all tasks", Query: ""},
	{Name: "filtered tasks", Query: "?summary=wherever&assignee_name=doe&limit=10"},
}

// Backend is one server under test.
type Backend struct {
	Name    string
	BaseURL string
}

// Backends returns the two servers under test in their fixed order.
func Backends(cfg config.Config) []Backend {
	return []Backend{
		{Name: "node", BaseURL: cfg.BaseURL(cfg.NodePort)},
		{Name: "actix", BaseURL: cfg.BaseURL(cfg.ActixPort)},
	}
}

// RunResult is the outcome of one run of one backend at one concurrency
// level of one scenario.
type RunResult struct {
	Scenario    string
	Backend     string
	Concurrency uint16
	Resources   monitor.Report
	Measurement report.Measurement
}

// Levels returns the concurrency levels of a sweep: powers of two starting
// at one, strictly below max.
func Levels(max uint16) []uint16 {
	var levels []uint16
	for c := uint32(1); c < uint32(max); c *= 2 {
		levels = append(levels, uint16(c))
	}
	return levels
}
