package telemetry

import (
	"sync/atomic"
	"time"
)

// TickOutcome beschreibt das beobachtbare Ergebnis eines Ticks.
type TickOutcome struct {
	Pushed    bool
	Popped    bool
	Stalled   bool
	Flushed   bool
	Gated     bool
	Transfers int
	Usage     int
}

// TickStats ist eine Momentaufnahme der gesammelten Werte.
type TickStats struct {
	Ticks     uint64
	Flushes   uint64
	Pushed    uint64
	Popped    uint64
	Transfers uint64
	Stalls    uint64
	Gated     uint64
	PeakUsage int64
	AvgStep   time.Duration
}

// TickMetrics fasst Messwerte zu Ticks einer Kette zusammen.
type TickMetrics struct {
	totalDuration atomic.Int64
	ticks         atomic.Uint64
	flushes       atomic.Uint64
	pushed        atomic.Uint64
	popped        atomic.Uint64
	transfers     atomic.Uint64
	stalls        atomic.Uint64
	gated         atomic.Uint64
	peakUsage     atomic.Int64
}

// NewTickMetrics erzeugt einen leeren Zählersatz.
func NewTickMetrics() *TickMetrics {
	return &TickMetrics{}
}

// TraceTick startet die Messung eines Ticks und liefert eine Abschlussfunktion,
// die Dauer und Ergebnis meldet.
func (m *TickMetrics) TraceTick() func(TickOutcome) {
	start := time.Now()
	m.ticks.Add(1)
	return func(o TickOutcome) {
		m.totalDuration.Add(time.Since(start).Nanoseconds())
		m.observe(o)
	}
}

func (m *TickMetrics) observe(o TickOutcome) {
	if o.Flushed {
		m.flushes.Add(1)
	}
	if o.Pushed {
		m.pushed.Add(1)
	}
	if o.Popped {
		m.popped.Add(1)
	}
	if o.Stalled {
		m.stalls.Add(1)
	}
	if o.Gated {
		m.gated.Add(1)
	}
	if o.Transfers > 0 {
		m.transfers.Add(uint64(o.Transfers))
	}

	usage := int64(o.Usage)
	for {
		peak := m.peakUsage.Load()
		if usage <= peak || m.peakUsage.CompareAndSwap(peak, usage) {
			return
		}
	}
}

// Snapshot gibt die gesammelten Werte zurück.
func (m *TickMetrics) Snapshot() TickStats {
	stats := TickStats{
		Ticks:     m.ticks.Load(),
		Flushes:   m.flushes.Load(),
		Pushed:    m.pushed.Load(),
		Popped:    m.popped.Load(),
		Transfers: m.transfers.Load(),
		Stalls:    m.stalls.Load(),
		Gated:     m.gated.Load(),
		PeakUsage: m.peakUsage.Load(),
	}
	if stats.Ticks > 0 {
		stats.AvgStep = time.Duration(m.totalDuration.Load() / int64(stats.Ticks))
	}
	return stats
}

// Reset setzt alle Zähler zurück.
func (m *TickMetrics) Reset() {
	m.totalDuration.Store(0)
	m.ticks.Store(0)
	m.flushes.Store(0)
	m.pushed.Store(0)
	m.popped.Store(0)
	m.transfers.Store(0)
	m.stalls.Store(0)
	m.gated.Store(0)
	m.peakUsage.Store(0)
}
