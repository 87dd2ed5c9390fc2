package monitor

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// HostSource reads the local process table through gopsutil.
type HostSource struct {
	Log *slog.Logger
}

func (h HostSource) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		hp := &hostProcess{ctx: ctx, p: p}
		// Prime the CPU counter so the read after the settle window is a
		// delta over that window. Entries that vanish or deny access drop out.
		if _, err := p.PercentWithContext(ctx, 0); err != nil {
			if h.Log != nil {
				h.Log.Debug("process not inspectable", "pid", p.Pid, "error", err)
			}
			continue
		}
		out = append(out, hp)
	}
	return out, nil
}

type hostProcess struct {
	ctx context.Context
	p   *process.Process
}

func (h *hostProcess) Name() (string, error) {
	return h.p.NameWithContext(h.ctx)
}

// CPUPercent is the usage since the previous call on this process.
func (h *hostProcess) CPUPercent() (float64, error) {
	return h.p.PercentWithContext(h.ctx, 0)
}

func (h *hostProcess) RSS() (uint64, error) {
	mi, err := h.p.MemoryInfoWithContext(h.ctx)
	if err != nil {
		return 0, err
	}
	return mi.RSS, nil
}
