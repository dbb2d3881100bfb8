package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestTraceTickRecordsOutcomes(t *testing.T) {
	metrics := NewTickMetrics()

	finish := metrics.TraceTick()
	time.Sleep(time.Millisecond)
	finish(TickOutcome{Pushed: true, Usage: 1})

	finish = metrics.TraceTick()
	finish(TickOutcome{Pushed: true, Popped: true, Transfers: 2, Usage: 3})

	finish = metrics.TraceTick()
	finish(TickOutcome{Flushed: true})

	finish = metrics.TraceTick()
	finish(TickOutcome{Stalled: true, Gated: true})

	stats := metrics.Snapshot()
	if stats.Ticks != 4 {
		t.Fatalf("expected 4 ticks, got %d", stats.Ticks)
	}
	if stats.Pushed != 2 || stats.Popped != 1 {
		t.Fatalf("unexpected push/pop counts: %+v", stats)
	}
	if stats.Transfers != 2 {
		t.Fatalf("expected 2 transfers, got %d", stats.Transfers)
	}
	if stats.Flushes != 1 || stats.Stalls != 1 || stats.Gated != 1 {
		t.Fatalf("unexpected flush/stall/gated counts: %+v", stats)
	}
	if stats.PeakUsage != 3 {
		t.Fatalf("expected peak usage 3, got %d", stats.PeakUsage)
	}
	if stats.AvgStep <= 0 {
		t.Fatalf("expected average step duration > 0, got %v", stats.AvgStep)
	}

	metrics.Reset()
	if stats := metrics.Snapshot(); stats != (TickStats{}) {
		t.Fatalf("expected metrics to reset to zero, got %+v", stats)
	}
}

func TestPeakUsageConcurrentObservers(t *testing.T) {
	metrics := NewTickMetrics()

	var wg sync.WaitGroup
	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(usage int) {
			defer wg.Done()
			metrics.TraceTick()(TickOutcome{Usage: usage})
		}(i)
	}
	wg.Wait()

	if got := metrics.Snapshot().PeakUsage; got != 64 {
		t.Fatalf("expected peak usage 64, got %d", got)
	}
}
