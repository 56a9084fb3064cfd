package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Metrics holds run counts and duration statistics per analyzer.
type Metrics struct {
	mu        sync.RWMutex
	analyzers map[string]*AnalyzerMetrics
}

// AnalyzerMetrics holds metrics for a single analyzer.
type AnalyzerMetrics struct {
	Runs        atomic.Int64
	Incremental atomic.Int64
	Diagnostics atomic.Int64
	TotalNs     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{analyzers: make(map[string]*AnalyzerMetrics)}
}

func (m *Metrics) getOrCreate(name string) *AnalyzerMetrics {
	m.mu.RLock()
	am, ok := m.analyzers[name]
	m.mu.RUnlock()
	if ok {
		return am
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if am, ok := m.analyzers[name]; ok {
		return am
	}
	am = &AnalyzerMetrics{}
	m.analyzers[name] = am
	return am
}

// Snapshot returns a point-in-time copy of all analyzer metrics.
func (m *Metrics) Snapshot() map[string]AnalyzerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]AnalyzerSnapshot, len(m.analyzers))
	for name, am := range m.analyzers {
		snap[name] = AnalyzerSnapshot{
			Runs:        am.Runs.Load(),
			Incremental: am.Incremental.Load(),
			Diagnostics: am.Diagnostics.Load(),
			TotalTime:   time.Duration(am.TotalNs.Load()),
		}
	}
	return snap
}

// AnalyzerSnapshot is a point-in-time copy of metrics for one analyzer.
type AnalyzerSnapshot struct {
	Runs int64
	// Incremental counts runs that followed an incremental re-parse.
	Incremental int64
	Diagnostics int64
	TotalTime   time.Duration
}

// Telemetry returns middleware that collects run counts and latency.
func Telemetry(metrics *Metrics) Middleware {
	return func(next Handler) Handler {
		return func(name string, ac *treesitter.AnalysisContext) []protocol.Diagnostic {
			am := metrics.getOrCreate(name)
			start := time.Now()
			diags := next(name, ac)
			elapsed := time.Since(start)

			am.Runs.Add(1)
			am.TotalNs.Add(int64(elapsed))
			am.Diagnostics.Add(int64(len(diags)))
			if ac.Diff != nil && !ac.Diff.IsFullReparse {
				am.Incremental.Add(1)
			}
			return diags
		}
	}
}
