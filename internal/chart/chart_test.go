package chart

import (
	"bytes"
	"strings"
	"testing"

	"benchit/internal/bench"
	"benchit/internal/monitor"
	"benchit/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(scenario, backend string, c uint16, lat float64, rps uint64) bench.RunResult {
	return bench.RunResult{
		Scenario:    scenario,
		Backend:     backend,
		Concurrency: c,
		Measurement: report.Measurement{LatencyMs: lat, RequestsPerSec: rps},
	}
}

func TestBar(t *testing.T) {
	assert.Equal(t, 101, Bar(50, 50, 100))
	assert.Equal(t, 1, Bar(0, 50, 100))
	assert.Equal(t, 51, Bar(25, 50, 100))
	assert.Equal(t, 34, Bar(1, 3, 100)) // 33.3 rounds down
	assert.Equal(t, 68, Bar(2, 3, 100)) // 66.7 rounds up
	assert.Equal(t, 1, Bar(0, 0, 100))
}

func TestGroupResults(t *testing.T) {
	results := []bench.RunResult{
		result("s1", "A", 1, 1, 1),
		result("s1", "B", 1, 1, 1),
		result("s1", "A", 2, 1, 1),
		result("s1", "B", 2, 1, 1),
	}

	groups := GroupResults(results)
	require.Len(t, groups, 2)
	assert.Equal(t, uint16(1), groups[0].Concurrency)
	assert.Equal(t, results[:2], groups[0].Results)
	assert.Equal(t, uint16(2), groups[1].Concurrency)
	assert.Equal(t, results[2:], groups[1].Results)
}

func TestGroupResultsRequiresAdjacency(t *testing.T) {
	results := []bench.RunResult{
		result("s1", "A", 1, 1, 1),
		result("s1", "A", 2, 1, 1),
		result("s1", "B", 1, 1, 1),
	}
	assert.Len(t, GroupResults(results), 3)
	assert.Empty(t, GroupResults(nil))
}

// bars returns the bar lengths printed for each backend line, in order.
func bars(out string) []int {
	var lens []int
	for _, line := range strings.Split(out, "\n") {
		i := strings.Index(line, "|")
		if i < 0 {
			continue
		}
		lens = append(lens, strings.Count(line[i:], "*"))
	}
	return lens
}

func TestChartsShareGlobalScale(t *testing.T) {
	results := []bench.RunResult{
		result("s1", "node", 1, 10, 100),
		result("s1", "actix", 1, 5, 400),
		result("s1", "node", 2, 20, 200),
		result("s1", "actix", 2, 0, 0),
	}

	var buf bytes.Buffer
	Charts(&buf, results, 100)
	out := buf.String()

	assert.Contains(t, out, "Latency in ms (lower is better)")
	assert.Contains(t, out, "Requests per second (higher is better)")
	assert.Equal(t, 4, strings.Count(out, "concurrent load "))
	assert.Less(t, strings.Index(out, "lower is better"), strings.Index(out, "higher is better"))

	// latency scaled by 20, rps by 400
	assert.Equal(t, []int{51, 26, 101, 1, 26, 101, 51, 1}, bars(out))
}

func TestChartsLineLayout(t *testing.T) {
	var buf bytes.Buffer
	Charts(&buf, []bench.RunResult{result("s1", "node", 1, 1, 1)}, 10)

	assert.Contains(t, buf.String(), "node   |*********** |\n")
}

func TestRow(t *testing.T) {
	r := result("s1", "node", 16, 12.346, 4183)
	r.Resources = monitor.Report{
		Postgres: monitor.Usage{CPUPercent: 150, MemoryBytes: 10*mebibyte + 1},
		BackendA: monitor.Usage{CPUPercent: 25, MemoryBytes: 200 * mebibyte},
	}

	var buf bytes.Buffer
	Row(&buf, r)
	assert.Equal(t, "node ,\t16,\t1.50,\t 10,\t0.25,\t200,\t0.00,\t  0,\t12.35,\t4183\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf)
	assert.Equal(t, "Target,\tConcur,\tPG cpu,\tmem,\tND cpu,\tmem,\tAX cpu,\tmem,\tlat ms,\trps\n", buf.String())
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{W: &buf, Width: 20}

	p.Scenario(bench.Scenarios[1])
	p.Level(4)
	p.Row(result("filtered tasks", "actix", 4, 1, 2))
	p.Charts([]bench.RunResult{result("filtered tasks", "actix", 4, 1, 2)})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Starting test /tasks?summary=wherever&assignee_name=doe&limit=10\nTarget,"))
	assert.Contains(t, out, "concurrent load = 4\n")
	assert.Contains(t, out, "actix,\t4,")
	assert.Equal(t, []int{21, 21}, bars(out))
}
