package app

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics tracks loop timing. Record methods are called from the loop
// goroutine; Snapshot may be called from anywhere.
type Metrics struct {
	// Tick timing
	tickCount   atomic.Uint64
	tickTotalNs atomic.Int64
	tickMinNs   atomic.Int64
	tickMaxNs   atomic.Int64
	lastTickNs  atomic.Int64
	overruns    atomic.Uint64

	// Time spent inside the console each tick
	consoleTotalNs atomic.Int64

	// Memory (sampled periodically)
	lastHeapBytes atomic.Uint64
	lastGCPauseNs atomic.Int64
	numGC         atomic.Uint32

	startNs atomic.Int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Reset()
	return m
}

// RecordTick records the duration of one tick and the part of it spent
// in the console.
func (m *Metrics) RecordTick(total, console time.Duration) {
	ns := total.Nanoseconds()

	m.tickCount.Add(1)
	m.tickTotalNs.Add(ns)
	m.lastTickNs.Store(ns)
	m.consoleTotalNs.Add(console.Nanoseconds())

	for {
		old := m.tickMinNs.Load()
		if ns >= old || m.tickMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.tickMaxNs.Load()
		if ns <= old || m.tickMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordOverrun records a tick that took longer than the tick interval.
func (m *Metrics) RecordOverrun() {
	m.overruns.Add(1)
}

// SampleMemory reads the runtime's memory statistics.
func (m *Metrics) SampleMemory() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.lastHeapBytes.Store(ms.HeapAlloc)
	m.numGC.Store(ms.NumGC)
	if ms.NumGC > 0 {
		m.lastGCPauseNs.Store(int64(ms.PauseNs[(ms.NumGC+255)%256]))
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.tickCount.Load()

	var avg, avgConsole int64
	if count > 0 {
		avg = m.tickTotalNs.Load() / int64(count)
		avgConsole = m.consoleTotalNs.Load() / int64(count)
	}

	minNs := m.tickMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:      time.Since(time.Unix(0, m.startNs.Load())),
		TickCount:   count,
		AvgTick:     time.Duration(avg),
		MinTick:     time.Duration(minNs),
		MaxTick:     time.Duration(m.tickMaxNs.Load()),
		LastTick:    time.Duration(m.lastTickNs.Load()),
		AvgConsole:  time.Duration(avgConsole),
		Overruns:    m.overruns.Load(),
		HeapBytes:   m.lastHeapBytes.Load(),
		LastGCPause: time.Duration(m.lastGCPauseNs.Load()),
		NumGC:       m.numGC.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.tickCount.Store(0)
	m.tickTotalNs.Store(0)
	m.tickMinNs.Store(1<<63 - 1)
	m.tickMaxNs.Store(0)
	m.lastTickNs.Store(0)
	m.overruns.Store(0)
	m.consoleTotalNs.Store(0)
	m.startNs.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	TickCount   uint64
	AvgTick     time.Duration
	MinTick     time.Duration
	MaxTick     time.Duration
	LastTick    time.Duration
	AvgConsole  time.Duration
	Overruns    uint64
	HeapBytes   uint64
	LastGCPause time.Duration
	NumGC       uint32
}

// OverrunRate returns the percentage of ticks that overran.
func (s MetricsSnapshot) OverrunRate() float64 {
	if s.TickCount == 0 {
		return 0
	}
	return float64(s.Overruns) / float64(s.TickCount) * 100
}

// HeapMB returns heap size in megabytes.
func (s MetricsSnapshot) HeapMB() float64 {
	return float64(s.HeapBytes) / (1024 * 1024)
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
