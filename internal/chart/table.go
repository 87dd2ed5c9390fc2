package chart

import (
	"fmt"
	"io"

	"benchit/internal/bench"
	"benchit/internal/monitor"
)

const mebibyte = 1024 * 1024

// Header prints the column header of the results table.
func Header(w io.Writer) {
	fmt.Fprintln(w, "Target,\tConcur,\tPG cpu,\tmem,\tND cpu,\tmem,\tAX cpu,\tmem,\tlat ms,\trps")
}

// Row prints one run as a table row. CPU is shown on a 0..1 per core scale
// and memory in whole MiB.
func Row(w io.Writer, r bench.RunResult) {
	fmt.Fprintf(w, "%-5s,\t%d,\t%s,\t%s,\t%s,\t%.2f,\t%d\n",
		r.Backend, r.Concurrency,
		usage(r.Resources.Postgres),
		usage(r.Resources.BackendA),
		usage(r.Resources.BackendB),
		r.Measurement.LatencyMs,
		r.Measurement.RequestsPerSec,
	)
}

func usage(u monitor.Usage) string {
	return fmt.Sprintf("%.2f,\t%3d", u.CPUPercent/100, u.MemoryBytes/mebibyte)
}
