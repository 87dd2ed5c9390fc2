package runner

import (
	"fmt"
	"io"
	"time"

	"benchit/internal/stats"
)

// WriteReport prints a wrk style summary of s.
func WriteReport(w io.Writer, job Job, s *stats.Stats, elapsed time.Duration) {
	fmt.Fprintf(w, "Running %s test @ %s\n", job.Duration, job.URL)
	fmt.Fprintf(w, "  %d threads and %d connections\n", job.Threads(), job.Concurrency)
	fmt.Fprintf(w, "  Thread Stats   Avg      Stdev     Max   +/- Stdev\n")
	fmt.Fprintf(w, "    Latency %10s %10s %10s %8.2f%%\n",
		formatLatency(s.MeanLatency()),
		formatLatency(s.StdDevLatency()),
		formatLatency(s.MaxLatency()),
		s.Latency.WithinStdDev(),
	)
	fmt.Fprintf(w, "  %d requests in %.2fs, %s read\n", s.Requests, elapsed.Seconds(), formatBytes(s.Bytes))
	if s.Fail > 0 {
		fmt.Fprintf(w, "  Non-2xx or 3xx responses: %d\n", s.Fail)
	}
	fmt.Fprintf(w, "Requests/sec: %10.2f\n", s.RequestsPerSec(elapsed))
	var perSec uint64
	if elapsed > 0 {
		perSec = uint64(float64(s.Bytes) / elapsed.Seconds())
	}
	fmt.Fprintf(w, "Transfer/sec: %10s\n", formatBytes(perSec))
}

// formatLatency renders d with the largest unit wrk would pick.
func formatLatency(d time.Duration) string {
	us := float64(d) / float64(time.Microsecond)
	switch {
	case us < 1000:
		return fmt.Sprintf("%.2fus", us)
	case us < 1000*1000:
		return fmt.Sprintf("%.2fms", us/1000)
	default:
		return fmt.Sprintf("%.2fs", us/(1000*1000))
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}
	return fmt.Sprintf("%.2f%s", v, units[i])
}
