// Package observability aggregates live relay metrics for the stats
// endpoint and the telemetry heartbeat.
package observability

import (
	"sync/atomic"
	"time"
)

// RelayStats is the snapshot served to the UI and logged periodically.
type RelayStats struct {
	ActiveSessions int64  `json:"active_sessions"`
	SessionsOpened uint64 `json:"sessions_opened"`
	SessionsClosed uint64 `json:"sessions_closed"`
	Broadcasts     uint64 `json:"broadcasts"`
	Deliveries     uint64 `json:"deliveries"`
	DroppedSends   uint64 `json:"dropped_sends"`
	DroppedFrames  uint64 `json:"dropped_frames"`
	RejectedConns  uint64 `json:"rejected_connections"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// Monitoring collects counters from the hot path with atomics only.
type Monitoring struct {
	sessionsOpened uint64
	sessionsClosed uint64
	broadcasts     uint64
	deliveries     uint64
	droppedSends   uint64
	droppedFrames  uint64
	rejectedConns  uint64
	startedAt      time.Time
}

func NewMonitoring() *Monitoring {
	return &Monitoring{startedAt: time.Now()}
}

func (m *Monitoring) IncrSessionsOpened() { atomic.AddUint64(&m.sessionsOpened, 1) }
func (m *Monitoring) IncrSessionsClosed() { atomic.AddUint64(&m.sessionsClosed, 1) }
func (m *Monitoring) IncrBroadcasts()     { atomic.AddUint64(&m.broadcasts, 1) }
func (m *Monitoring) IncrDeliveries()     { atomic.AddUint64(&m.deliveries, 1) }
func (m *Monitoring) IncrDroppedSends()   { atomic.AddUint64(&m.droppedSends, 1) }
func (m *Monitoring) IncrDroppedFrames()  { atomic.AddUint64(&m.droppedFrames, 1) }
func (m *Monitoring) IncrRejectedConns()  { atomic.AddUint64(&m.rejectedConns, 1) }

func (m *Monitoring) Snapshot() RelayStats {
	opened := atomic.LoadUint64(&m.sessionsOpened)
	closed := atomic.LoadUint64(&m.sessionsClosed)
	return RelayStats{
		ActiveSessions: int64(opened) - int64(closed),
		SessionsOpened: opened,
		SessionsClosed: closed,
		Broadcasts:     atomic.LoadUint64(&m.broadcasts),
		Deliveries:     atomic.LoadUint64(&m.deliveries),
		DroppedSends:   atomic.LoadUint64(&m.droppedSends),
		DroppedFrames:  atomic.LoadUint64(&m.droppedFrames),
		RejectedConns:  atomic.LoadUint64(&m.rejectedConns),
		UptimeSeconds:  int64(time.Since(m.startedAt).Seconds()),
	}
}
