package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe wrapper around hdrhistogram
type SafeHistogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

func NewSafeHistogram() *SafeHistogram {
	// 1us to 10min, 3 significant figures
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &SafeHistogram{hist: h}
}

// RecordValue records a latency in microseconds. Values beyond the
// trackable range are clamped to the highest trackable value.
func (h *SafeHistogram) RecordValue(v int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v > h.hist.HighestTrackableValue() {
		v = h.hist.HighestTrackableValue()
	}
	return h.hist.RecordValue(v)
}

func (h *SafeHistogram) ValueAtQuantile(q float64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.ValueAtQuantile(q)
}

func (h *SafeHistogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Mean()
}

func (h *SafeHistogram) StdDev() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.StdDev()
}

func (h *SafeHistogram) Max() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Max()
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}

// WithinStdDev returns the percentage of recorded values lying within one
// standard deviation of the mean.
func (h *SafeHistogram) WithinStdDev() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := h.hist.TotalCount()
	if total == 0 {
		return 0
	}
	mean, sd := h.hist.Mean(), h.hist.StdDev()
	lo, hi := mean-sd, mean+sd

	var within int64
	for _, b := range h.hist.Distribution() {
		mid := float64(b.From+b.To) / 2
		if mid >= lo && mid <= hi {
			within += b.Count
		}
	}
	return float64(within) / float64(total) * 100
}
