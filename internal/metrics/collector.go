// Package metrics aggregates generation call statistics.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for one provider or operation.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Prompt and response sizes in characters.
	TotalPromptChars   int64
	TotalResponseChars int64
	MinPromptChars     int64
	MaxPromptChars     int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Name        string
	Count       int64
	Failures    int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64

	TotalPromptChars   int64
	TotalResponseChars int64
	AvgPromptChars     float64
	AvgResponseChars   float64
	MinPromptChars     int64
	MaxPromptChars     int64
}

// Snapshot is the aggregate of every operation at a point in time.
type Snapshot struct {
	From       time.Time
	To         time.Time
	Operations []OperationSnapshot
}

// Total sums the call counts of every operation.
func (s Snapshot) Total() int64 {
	var n int64
	for _, op := range s.Operations {
		n += op.Count
	}
	return n
}

// Collector aggregates statistics per operation name.
// All methods are thread-safe.
type Collector struct {
	mu   sync.RWMutex
	from time.Time
	to   time.Time
	ops  map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{ops: make(map[string]*OperationMetrics)}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:        time.Duration(math.MaxInt64),
			MinPromptChars: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

// Call is one generation call to record.
type Call struct {
	Operation     string
	At            time.Time
	Duration      time.Duration
	PromptChars   int64
	ResponseChars int64
	Failed        bool
}

// Record adds one call to the aggregate.
func (c *Collector) Record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !call.At.IsZero() {
		if c.from.IsZero() || call.At.Before(c.from) {
			c.from = call.At
		}
		if call.At.After(c.to) {
			c.to = call.At
		}
	}

	m := c.getOrCreate(call.Operation)
	m.Count++
	if call.Failed {
		m.Failures++
	}
	m.TotalTime += call.Duration
	m.MinTime = min(m.MinTime, call.Duration)
	m.MaxTime = max(m.MaxTime, call.Duration)

	m.TotalPromptChars += call.PromptChars
	m.TotalResponseChars += call.ResponseChars
	m.MinPromptChars = min(m.MinPromptChars, call.PromptChars)
	m.MaxPromptChars = max(m.MaxPromptChars, call.PromptChars)
}

// snapshotOp creates a snapshot for an operation, returning false if no data.
func snapshotOp(name string, m *OperationMetrics) (OperationSnapshot, bool) {
	if m == nil || m.Count == 0 {
		return OperationSnapshot{}, false
	}
	n := float64(m.Count)
	return OperationSnapshot{
		Name:               name,
		Count:              m.Count,
		Failures:           m.Failures,
		TotalTimeMs:        m.TotalTime.Milliseconds(),
		AvgTimeMs:          float64(m.TotalTime.Milliseconds()) / n,
		MinTimeMs:          m.MinTime.Milliseconds(),
		MaxTimeMs:          m.MaxTime.Milliseconds(),
		TotalPromptChars:   m.TotalPromptChars,
		TotalResponseChars: m.TotalResponseChars,
		AvgPromptChars:     float64(m.TotalPromptChars) / n,
		AvgResponseChars:   float64(m.TotalResponseChars) / n,
		MinPromptChars:     m.MinPromptChars,
		MaxPromptChars:     m.MaxPromptChars,
	}, true
}

// Snapshot returns the operations sorted by call count, then name.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{From: c.from, To: c.to}
	for name, m := range c.ops {
		if op, ok := snapshotOp(name, m); ok {
			snap.Operations = append(snap.Operations, op)
		}
	}
	sort.Slice(snap.Operations, func(i, j int) bool {
		a, b := snap.Operations[i], snap.Operations[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return snap
}
