package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"relay-lab/observability"
)

// TelemetryWorker periodically logs a relay heartbeat: live session
// counters plus the process's own CPU and RSS figures.
type TelemetryWorker struct {
	log        *slog.Logger
	monitoring *observability.Monitoring
	interval   time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.Monitoring, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay telemetry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.Snapshot()
			w.log.Info("Relay heartbeat",
				"active_sessions", stats.ActiveSessions,
				"broadcasts", stats.Broadcasts,
				"deliveries", stats.Deliveries,
				"dropped_sends", stats.DroppedSends,
				"dropped_frames", stats.DroppedFrames,
				"cpu_percent", cpu,
				"ram_bytes", rss,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return mem.RSS, cpu, nil
}
