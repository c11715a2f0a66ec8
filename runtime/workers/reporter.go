package workers

import (
	"context"
	"ipk-chat/contract"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ReporterWorker periodically logs the room occupancy and the resources used
// by the server process.
type ReporterWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewReporterWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, registry: registry, interval: interval}
}

// Run starts the reporting loop until context cancellation
func (w *ReporterWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Debug("Process stats unavailable", "error", err)
		proc = nil
	}

	startTime := time.Now()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(proc, startTime)
			w.log.Debug("Context done, reporter stopped")
			return nil
		case <-ticker.C:
			w.report(proc, startTime)
		}
	}
}

func (w *ReporterWorker) report(proc *process.Process, startTime time.Time) {
	occupancy := w.registry.Occupancy()
	clients := 0
	attrs := make([]any, 0, 2*len(occupancy)+8)
	for room, count := range occupancy {
		clients += count
		attrs = append(attrs, "room_"+string(room), count)
	}
	attrs = append(attrs,
		"clients", clients,
		"uptime", time.Since(startTime).Round(time.Second).String())

	if proc != nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			attrs = append(attrs, "rss_mb", mem.RSS/1024/1024)
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			attrs = append(attrs, "cpu_percent", cpu)
		}
	}
	w.log.Info("Server report", attrs...)
}
