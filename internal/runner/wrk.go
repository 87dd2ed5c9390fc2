package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrExternalTool is returned when the generator cannot be started, exits
// unsuccessfully or produces output that is not text.
var ErrExternalTool = errors.New("load generator failed")

// killGrace bounds how long Invoke waits for the output pipes to drain
// after the child has been killed.
const killGrace = 2 * time.Second

// Wrk invokes the wrk binary found at Path (or on $PATH).
type Wrk struct {
	Path string
	Log  *slog.Logger
}

// NewWrk resolves path against $PATH.
func NewWrk(path string, log *slog.Logger) (*Wrk, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, errors.Wrapf(ErrExternalTool, "%s not found: %v", path, err)
	}
	return &Wrk{Path: resolved, Log: log}, nil
}

// Args returns the wrk command line for job, without the program name.
func Args(job Job) []string {
	return []string{
		fmt.Sprintf("-t%d", job.Threads()),
		fmt.Sprintf("-c%d", job.Concurrency),
		fmt.Sprintf("-d%ds", int(job.Duration/time.Second)),
		job.URL,
	}
}

// Invoke runs wrk and waits for it to exit. The child is killed when ctx
// is cancelled before it finishes.
func (w *Wrk) Invoke(ctx context.Context, job Job) ([]byte, error) {
	args := Args(job)
	cmd := exec.CommandContext(ctx, w.Path, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if w.Log != nil {
		w.Log.Debug("invoking load generator", "path", w.Path, "args", strings.Join(args, " "))
	}

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, errors.Wrapf(ErrExternalTool, "%s %s: %v: %s", w.Path, strings.Join(args, " "), err, msg)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return nil, errors.Wrapf(ErrExternalTool, "%s produced non-UTF-8 output", w.Path)
	}

	if w.Log != nil {
		w.Log.Debug("load generator finished", "url", job.URL, "concurrency", job.Concurrency, "elapsed", time.Since(start).Round(time.Millisecond))
	}
	return stdout.Bytes(), nil
}
