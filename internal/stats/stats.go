package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds aggregated metrics of one built-in generator run.
type Stats struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Bytes    uint64

	// Latency histogram (microseconds)
	Latency *SafeHistogram
}

func NewStats() *Stats {
	return &Stats{
		Latency: NewSafeHistogram(),
	}
}

// Add records one completed request. Failed requests count towards the
// totals but not the latency distribution.
func (s *Stats) Add(success bool, bytes int64, latency time.Duration) {
	atomic.AddUint64(&s.Requests, 1)
	if bytes > 0 {
		atomic.AddUint64(&s.Bytes, uint64(bytes))
	}
	if !success {
		atomic.AddUint64(&s.Fail, 1)
		return
	}
	atomic.AddUint64(&s.Success, 1)
	s.Latency.RecordValue(latency.Microseconds())
}

func (s *Stats) ErrorRate() float64 {
	reqs := atomic.LoadUint64(&s.Requests)
	if reqs == 0 {
		return 0
	}
	fails := atomic.LoadUint64(&s.Fail)
	return (float64(fails) / float64(reqs)) * 100
}

// MeanLatency is the average successful request latency.
func (s *Stats) MeanLatency() time.Duration {
	return time.Duration(s.Latency.Mean() * float64(time.Microsecond))
}

func (s *Stats) StdDevLatency() time.Duration {
	return time.Duration(s.Latency.StdDev() * float64(time.Microsecond))
}

func (s *Stats) MaxLatency() time.Duration {
	return time.Duration(s.Latency.Max()) * time.Microsecond
}

// RequestsPerSec is the completed request rate over elapsed.
func (s *Stats) RequestsPerSec(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&s.Requests)) / elapsed.Seconds()
}
