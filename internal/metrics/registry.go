package metrics

import (
	"errors"
	"sync"
	"time"
)

// ErrNegativeIncrement indicates an attempt to decrease a counter.
var ErrNegativeIncrement = errors.New("metrics: counter increment must be non-negative")

// Registry holds named counters and latency statistics for a single process.
// It is constructed explicitly and passed to the components that record into it.
type Registry struct {
	mu        sync.Mutex
	counters  map[string]*Counter
	latencies map[string]*Latency
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Counter),
		latencies: make(map[string]*Latency),
	}
}

// Counter returns the counter registered under name, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	counter, ok := r.counters[name]
	if !ok {
		counter = &Counter{}
		r.counters[name] = counter
	}
	return counter
}

// Latency returns the latency metric registered under name, creating it on first use.
func (r *Registry) Latency(name string) *Latency {
	r.mu.Lock()
	defer r.mu.Unlock()
	latency, ok := r.latencies[name]
	if !ok {
		latency = &Latency{}
		r.latencies[name] = latency
	}
	return latency
}

// Snapshot copies the current value of every metric.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := Snapshot{
		Counters:  make(map[string]int64, len(r.counters)),
		Latencies: make(map[string]LatencySnapshot, len(r.latencies)),
	}
	for name, counter := range r.counters {
		snapshot.Counters[name] = counter.Value()
	}
	for name, latency := range r.latencies {
		snapshot.Latencies[name] = latency.Snapshot()
	}
	return snapshot
}

// Counter is a monotonically increasing count.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// Inc adds one.
func (c *Counter) Inc() {
	_ = c.Add(1)
}

// Add increases the counter by amount.
func (c *Counter) Add(amount int64) error {
	if amount < 0 {
		return ErrNegativeIncrement
	}
	c.mu.Lock()
	c.value += amount
	c.mu.Unlock()
	return nil
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Latency accumulates millisecond observations.
type Latency struct {
	mu      sync.Mutex
	count   int64
	totalMS int64
	minMS   int64
	maxMS   int64
}

// Observe records one duration. Negative durations are ignored.
func (l *Latency) Observe(duration time.Duration) {
	milliseconds := duration.Milliseconds()
	if milliseconds < 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		l.minMS = milliseconds
		l.maxMS = milliseconds
	} else {
		l.minMS = min(l.minMS, milliseconds)
		l.maxMS = max(l.maxMS, milliseconds)
	}
	l.count++
	l.totalMS += milliseconds
}

// Snapshot returns the aggregated statistics.
func (l *Latency) Snapshot() LatencySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := LatencySnapshot{
		Count:   l.count,
		TotalMS: l.totalMS,
		MinMS:   l.minMS,
		MaxMS:   l.maxMS,
	}
	if l.count > 0 {
		snapshot.AvgMS = float64(l.totalMS) / float64(l.count)
	}
	return snapshot
}

// Snapshot is a point-in-time copy of a registry.
type Snapshot struct {
	Counters  map[string]int64           `json:"counters"`
	Latencies map[string]LatencySnapshot `json:"latencies"`
}

// LatencySnapshot summarizes a latency metric.
type LatencySnapshot struct {
	Count   int64   `json:"count"`
	TotalMS int64   `json:"total_ms"`
	MinMS   int64   `json:"min_ms"`
	MaxMS   int64   `json:"max_ms"`
	AvgMS   float64 `json:"avg_ms"`
}
