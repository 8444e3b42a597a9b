package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/Mohammad-Harkous/chat-app/observability"
)

// MonitoringWorker samples technical metrics (memory, CPU, OS status,
// goroutines, connected users) on an interval and publishes them to the
// Monitor for the stats endpoint.
type MonitoringWorker struct {
	log         *slog.Logger
	monitor     *observability.Monitor
	onlineCount func() int
	interval    time.Duration
}

func NewMonitoringWorker(log *slog.Logger, monitor *observability.Monitor,
	onlineCount func() int, interval time.Duration) *MonitoringWorker {
	return &MonitoringWorker{
		log:         log,
		monitor:     monitor,
		onlineCount: onlineCount,
		interval:    interval,
	}
}

func (w *MonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := w.collect(proc)
			if err != nil {
				w.log.Warn("failed to collect self stats", "error", err)
				continue
			}
			w.monitor.SetLatest(stats)
		}
	}
}

func (w *MonitoringWorker) collect(proc *process.Process) (observability.Stats, error) {
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return observability.Stats{}, err
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return observability.Stats{}, err
	}
	status, err := proc.Status()
	if err != nil {
		return observability.Stats{}, err
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return observability.Stats{
		PID:          os.Getpid(),
		PIDStatus:    status,
		CPUPercent:   cpuPercent,
		RSSBytes:     memInfo.RSS,
		AllocMemMB:   memStats.Alloc / 1024 / 1024,
		NumGC:        memStats.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		OnlineUsers:  w.onlineCount(),
		CollectedAt:  time.Now().UTC(),
	}, nil
}
