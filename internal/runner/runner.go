package runner

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"benchit/internal/stats"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Config is the configuration of one built-in generator run.
type Config struct {
	URL        string
	Users      int
	Duration   time.Duration
	TimeoutSec int
}

// Runner is a closed-loop HTTP load generator: each of Users workers issues
// a GET, waits for the response and immediately issues the next one.
type Runner struct {
	Cfg    Config
	Stats  *stats.Stats
	Client *http.Client

	elapsed time.Duration
}

func NewRunner(cfg Config) *Runner {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = cfg.Users
	t.MaxConnsPerHost = cfg.Users
	t.MaxIdleConnsPerHost = cfg.Users

	client := &http.Client{
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		Transport: t,
	}

	return &Runner{
		Cfg:    cfg,
		Stats:  stats.NewStats(),
		Client: client,
	}
}

// Run blocks until the configured duration elapsed or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.Cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < r.Cfg.Users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				r.executeRequest(ctx)
			}
		}()
	}
	wg.Wait()

	r.elapsed = time.Since(start)
	r.Client.CloseIdleConnections()
}

// Elapsed is the wall time of the last Run.
func (r *Runner) Elapsed() time.Duration {
	return r.elapsed
}

func (r *Runner) executeRequest(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Cfg.URL, nil)
	if err != nil {
		r.Stats.Add(false, 0, 0)
		return
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := r.Client.Do(req)
	if err != nil {
		// Requests cut off by the end of the run are not failures.
		if ctx.Err() == nil {
			r.Stats.Add(false, 0, time.Since(start))
		}
		return
	}
	n, _ := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	latency := time.Since(start)

	r.Stats.Add(resp.StatusCode >= 200 && resp.StatusCode < 400, n, latency)
}

// Builtin is an Invoker backed by Runner. Its report mimics wrk's summary
// so the same parser applies to both.
type Builtin struct {
	TimeoutSec int
	Log        *slog.Logger
}

func (b *Builtin) Invoke(ctx context.Context, job Job) ([]byte, error) {
	if job.Concurrency == 0 {
		return nil, errors.Wrap(ErrExternalTool, "concurrency must be positive")
	}
	timeout := b.TimeoutSec
	if timeout <= 0 {
		timeout = 10
	}

	r := NewRunner(Config{
		URL:        job.URL,
		Users:      int(job.Concurrency),
		Duration:   job.Duration,
		TimeoutSec: timeout,
	})
	if b.Log != nil {
		b.Log.Debug("running built-in generator", "url", job.URL, "users", job.Concurrency, "duration", job.Duration)
	}
	r.Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	WriteReport(&buf, job, r.Stats, r.Elapsed())
	return buf.Bytes(), nil
}
