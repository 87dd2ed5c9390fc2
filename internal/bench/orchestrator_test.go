package bench

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"benchit/internal/config"
	"benchit/internal/monitor"
	"benchit/internal/report"
	"benchit/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const toolOutput = "    Latency    2.00ms    0.10ms   4.00ms   80.00%\nRequests/sec:   500.25\n"

type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) Invoke(ctx context.Context, job runner.Job) ([]byte, error) {
	args := m.Called(ctx, job)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

type recorder struct {
	scenarios []Scenario
	levels    []uint16
	rows      []RunResult
	charts    [][]RunResult
}

func (r *recorder) Scenario(s Scenario)    { r.scenarios = append(r.scenarios, s) }
func (r *recorder) Level(c uint16)         { r.levels = append(r.levels, c) }
func (r *recorder) Row(res RunResult)      { r.rows = append(r.rows, res) }
func (r *recorder) Charts(res []RunResult) { r.charts = append(r.charts, res) }

type fakeSampler struct {
	report monitor.Report
	err    error
	calls  int32
}

func (f *fakeSampler) Sample(ctx context.Context) (monitor.Report, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.report, f.err
}

func testConfig(maxConcurrency uint16, monitored bool) config.Config {
	return config.Config{
		Host:            []byte{127, 0, 0, 1},
		MaxConcurrency:  maxConcurrency,
		NodePort:        3000,
		ActixPort:       3002,
		Monitor:         monitored,
		DurationSeconds: 1,
		Tool:            config.ToolBuiltin,
		ChartWidth:      100,
	}
}

func TestLevels(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 4, 8, 16, 32, 64}, Levels(128))
	assert.Empty(t, Levels(1))
	assert.Empty(t, Levels(0))
	assert.Equal(t, []uint16{1, 2}, Levels(3))
	assert.Equal(t, []uint16{1, 2}, Levels(4))

	all := Levels(65535)
	assert.Len(t, all, 16)
	assert.Equal(t, uint16(32768), all[len(all)-1])
}

func TestBackends(t *testing.T) {
	b := Backends(testConfig(4, false))
	require.Len(t, b, 2)
	assert.Equal(t, Backend{Name: "node", BaseURL: "http://127.0.0.1:3000/tasks"}, b[0])
	assert.Equal(t, Backend{Name: "actix", BaseURL: "http://127.0.0.1:3002/tasks"}, b[1])
}

func TestRunEndToEnd(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Invoke", mock.Anything, mock.Anything).Return([]byte(toolOutput), nil)
	sampler := &fakeSampler{report: monitor.Report{Postgres: monitor.Usage{CPUPercent: 1}}}
	rec := &recorder{}

	o := New(testConfig(4, false), inv, sampler, rec, nil)
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, Scenarios, rec.scenarios)
	assert.Equal(t, []uint16{1, 2, 1, 2}, rec.levels)
	assert.Zero(t, atomic.LoadInt32(&sampler.calls))
	require.Len(t, rec.charts, 2)

	for i, results := range rec.charts {
		require.Len(t, results, 4)
		want := []struct {
			backend     string
			concurrency uint16
		}{{"node", 1}, {"actix", 1}, {"node", 2}, {"actix", 2}}
		for j, r := range results {
			assert.Equal(t, Scenarios[i].Name, r.Scenario)
			assert.Equal(t, want[j].backend, r.Backend)
			assert.Equal(t, want[j].concurrency, r.Concurrency)
			assert.Equal(t, monitor.Report{}, r.Resources)
			assert.Equal(t, report.Measurement{LatencyMs: 2, RequestsPerSec: 500}, r.Measurement)
		}
	}
	assert.Len(t, rec.rows, 8)

	inv.AssertNumberOfCalls(t, "Invoke", 8)
	inv.AssertCalled(t, "Invoke", mock.Anything, runner.Job{
		Concurrency: 2,
		URL:         "http://127.0.0.1:3002/tasks?summary=wherever&assignee_name=doe&limit=10",
		Duration:    time.Second,
	})
}

func TestRunNoLevels(t *testing.T) {
	inv := &mockInvoker{}
	rec := &recorder{}

	o := New(testConfig(1, false), inv, nil, rec, nil)
	require.NoError(t, o.Run(context.Background()))

	inv.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
	assert.Len(t, rec.scenarios, 2)
	require.Len(t, rec.charts, 2)
	assert.Empty(t, rec.charts[0])
}

func TestRunWithMonitoring(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Invoke", mock.Anything, mock.Anything).Return([]byte(toolOutput), nil)
	usage := monitor.Report{
		Postgres: monitor.Usage{CPUPercent: 10, MemoryBytes: 1 << 20},
		BackendA: monitor.Usage{CPUPercent: 50, MemoryBytes: 2 << 20},
	}
	sampler := &fakeSampler{report: usage}
	rec := &recorder{}

	o := New(testConfig(2, true), inv, sampler, rec, nil)
	o.MonitorDelay = time.Millisecond
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, int32(4), atomic.LoadInt32(&sampler.calls))
	for _, r := range rec.rows {
		assert.Equal(t, usage, r.Resources)
	}
}

func TestRunInvokeFailureAborts(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Invoke", mock.Anything, mock.Anything).Return(nil, runner.ErrExternalTool).Once()
	rec := &recorder{}

	o := New(testConfig(128, false), inv, nil, rec, nil)
	err := o.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, runner.ErrExternalTool)
	assert.Empty(t, rec.rows)
	assert.Empty(t, rec.charts)
	inv.AssertNumberOfCalls(t, "Invoke", 1)
}

func TestRunParseFailureAborts(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Invoke", mock.Anything, mock.Anything).Return([]byte("Requests/sec: 99999999999999999999999\n"), nil)
	rec := &recorder{}

	err := New(testConfig(4, false), inv, nil, rec, nil).Run(context.Background())
	assert.ErrorIs(t, err, report.ErrParse)
	assert.Empty(t, rec.charts)
}

func TestRunNonTextOutputIsToolFailure(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Invoke", mock.Anything, mock.Anything).Return([]byte{0xff, 0xfe}, nil)

	err := New(testConfig(4, false), inv, nil, &recorder{}, nil).Run(context.Background())
	assert.ErrorIs(t, err, runner.ErrExternalTool)
}

// blockingInvoker waits for cancellation like a killed child process would.
type blockingInvoker struct {
	cancelled chan struct{}
}

func (b *blockingInvoker) Invoke(ctx context.Context, job runner.Job) ([]byte, error) {
	<-ctx.Done()
	close(b.cancelled)
	return nil, ctx.Err()
}

func TestSamplerFailureCancelsInvocation(t *testing.T) {
	inv := &blockingInvoker{cancelled: make(chan struct{})}
	sampler := &fakeSampler{err: errors.New("process table unavailable")}

	o := New(testConfig(4, true), inv, sampler, &recorder{}, nil)
	o.MonitorDelay = 0

	err := o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "process table unavailable")

	select {
	case <-inv.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("invocation was not cancelled")
	}
}

func TestRunCancelled(t *testing.T) {
	inv := &blockingInvoker{cancelled: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := New(testConfig(4, false), inv, nil, &recorder{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMonitorDelayFor(t *testing.T) {
	assert.Equal(t, 30*time.Second, MonitorDelayFor(time.Minute))
	assert.Equal(t, 500*time.Millisecond, MonitorDelayFor(time.Second))
}
