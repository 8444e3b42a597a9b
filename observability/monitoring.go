// Package observability aggregates process self-stats for the /health/stats
// endpoint.
package observability

import (
	"sync"
	"time"
)

// Stats is the snapshot exposed over HTTP.
type Stats struct {
	PID          int       `json:"pid"`
	PIDStatus    string    `json:"pid_status"`
	CPUPercent   float64   `json:"cpu_percent"`
	RSSBytes     uint64    `json:"rss_bytes"`
	AllocMemMB   uint64    `json:"alloc_mem_mb"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
	OnlineUsers  int       `json:"online_users"`
	CollectedAt  time.Time `json:"collected_at"`
}

// Monitor holds the latest snapshot collected by the monitoring worker.
type Monitor struct {
	mu     sync.RWMutex
	latest Stats
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) SetLatest(stats Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = stats
}

func (m *Monitor) Latest() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
