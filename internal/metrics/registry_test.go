package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCounterAccumulates(t *testing.T) {
	registry := NewRegistry()
	counter := registry.Counter("commands_total")
	counter.Inc()
	if err := counter.Add(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := counter.Add(-1); !errors.Is(err, ErrNegativeIncrement) {
		t.Fatalf("expected ErrNegativeIncrement, got %v", err)
	}
	if registry.Counter("commands_total") != counter {
		t.Fatalf("expected the same counter for the same name")
	}
	if value := registry.Snapshot().Counters["commands_total"]; value != 5 {
		t.Fatalf("expected 5, got %d", value)
	}
}

func TestLatencyStatistics(t *testing.T) {
	latency := NewRegistry().Latency("request_ms")
	if snapshot := latency.Snapshot(); snapshot != (LatencySnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snapshot)
	}

	for _, duration := range []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond, -time.Millisecond} {
		latency.Observe(duration)
	}

	snapshot := latency.Snapshot()
	expected := LatencySnapshot{Count: 3, TotalMS: 60, MinMS: 10, MaxMS: 30, AvgMS: 20}
	if snapshot != expected {
		t.Fatalf("expected %+v, got %+v", expected, snapshot)
	}
}

func TestRegistryIsSafeForConcurrentUse(t *testing.T) {
	registry := NewRegistry()
	var waitGroup sync.WaitGroup
	for worker := 0; worker < 16; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for iteration := 0; iteration < 100; iteration++ {
				registry.Counter("hits").Inc()
				registry.Latency("ms").Observe(time.Millisecond)
			}
		}()
	}
	waitGroup.Wait()

	snapshot := registry.Snapshot()
	if snapshot.Counters["hits"] != 1600 || snapshot.Latencies["ms"].Count != 1600 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}
