package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	commands map[string]*CommandMetrics

	totalDispatches uint64
	totalFailures   uint64
	totalPanics     uint64
	totalDuration   time.Duration
	byKind          map[OutcomeKind]uint64
}

// CommandMetrics holds metrics for one command.
type CommandMetrics struct {
	Name          string
	DispatchCount uint64
	FailureCount  uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastKind      OutcomeKind
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commands: make(map[string]*CommandMetrics),
		byKind:   make(map[OutcomeKind]uint64),
	}
}

// RecordOutcome counts an outcome that never reached a handler.
func (m *Metrics) RecordOutcome(kind OutcomeKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKind[kind]++
}

// RecordDispatch records a handler call.
func (m *Metrics) RecordDispatch(name string, duration time.Duration, kind OutcomeKind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration
	m.byKind[kind]++
	failed := kind != OutcomeHandled
	if failed {
		m.totalFailures++
	}

	cm := m.commands[name]
	if cm == nil {
		cm = &CommandMetrics{
			Name:        name,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.commands[name] = cm
	}

	cm.DispatchCount++
	cm.TotalDuration += duration
	cm.LastKind = kind
	cm.LastDispatch = time.Now()
	if duration < cm.MinDuration {
		cm.MinDuration = duration
	}
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}
	if failed {
		cm.FailureCount++
	}
}

// RecordPanic records a panic recovery.
func (m *Metrics) RecordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// CommandStats returns a copy of the metrics for one command, or nil.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commands[name]
	if cm == nil {
		return nil
	}
	c := *cm
	return &c
}

// TopCommands returns the n most dispatched commands.
func (m *Metrics) TopCommands(n int) []CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CommandMetrics, 0, len(m.commands))
	for _, cm := range m.commands {
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Name < out[j].Name
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[string]*CommandMetrics)
	m.byKind = make(map[OutcomeKind]uint64)
	m.totalDispatches = 0
	m.totalFailures = 0
	m.totalPanics = 0
	m.totalDuration = 0
}

// MetricsSnapshot is a point-in-time copy of the totals.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalFailures   uint64
	TotalPanics     uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	CommandCount    int
	ByKind          map[OutcomeKind]uint64
	Timestamp       time.Time
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalDispatches: m.totalDispatches,
		TotalFailures:   m.totalFailures,
		TotalPanics:     m.totalPanics,
		TotalDuration:   m.totalDuration,
		CommandCount:    len(m.commands),
		ByKind:          make(map[OutcomeKind]uint64, len(m.byKind)),
		Timestamp:       time.Now(),
	}
	for k, v := range m.byKind {
		s.ByKind[k] = v
	}
	if m.totalDispatches > 0 {
		s.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}
	return s
}

// AverageDuration returns the command's average handler time.
func (cm *CommandMetrics) AverageDuration() time.Duration {
	if cm.DispatchCount == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.DispatchCount)
}
