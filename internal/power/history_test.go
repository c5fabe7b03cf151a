// v0
// internal/power/history_test.go
package power

import (
	"testing"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
)

func TestAppendEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(3)

	for tick := 0; tick < 3; tick++ {
		count, evicted := h.Append(Sample{Tick: float64(tick), TotalWatts: 100})
		if evicted != nil {
			t.Fatalf("tick %d: unexpected eviction of %+v", tick, *evicted)
		}
		if count != tick+1 {
			t.Fatalf("tick %d: expected count %d, got %d", tick, tick+1, count)
		}
	}

	count, evicted := h.Append(Sample{Tick: 3, TotalWatts: 100})
	if count != 3 {
		t.Fatalf("expected count to stay at capacity, got %d", count)
	}
	if evicted == nil || evicted.Tick != 0 {
		t.Fatalf("expected the oldest sample (tick 0) to be evicted, got %+v", evicted)
	}

	samples := h.Snapshot()
	if samples[0].Tick != 1 || samples[2].Tick != 3 {
		t.Fatalf("expected FIFO order ticks 1..3, got %+v", samples)
	}
}

func TestHistoryRetainsLastFiftySamples(t *testing.T) {
	h := NewHistory(DefaultHistoryCap)

	for tick := 0; tick < 52; tick++ {
		h.Append(Sample{Tick: float64(tick), TotalWatts: 500})
	}

	if h.Len() != 50 {
		t.Fatalf("expected 50 retained samples, got %d", h.Len())
	}
	samples := h.Snapshot()
	if samples[0].Tick != 2 {
		t.Fatalf("expected earliest retained tick to be 2, got %.0f", samples[0].Tick)
	}
	if samples[len(samples)-1].Tick != 51 {
		t.Fatalf("expected newest retained tick to be 51, got %.0f", samples[len(samples)-1].Tick)
	}
}

func TestHandleEventFiltersKinds(t *testing.T) {
	h := NewHistory(10)

	h.HandleEvent(bus.Event{Kind: bus.KindLog, Payload: "not a sample"})
	if h.Len() != 0 {
		t.Fatalf("log events must not be appended")
	}

	h.HandleEvent(bus.Event{Kind: bus.KindPowerSample, Payload: "wrong payload type"})
	if h.Len() != 0 {
		t.Fatalf("malformed payloads must be ignored")
	}

	h.HandleEvent(bus.Event{Kind: bus.KindPowerSample, Payload: Sample{Tick: 0, TotalWatts: 540}})
	if h.Len() != 1 {
		t.Fatalf("expected one sample, got %d", h.Len())
	}
	if got := h.Snapshot()[0].TotalWatts; got != 540 {
		t.Fatalf("expected sample watts 540, got %.1f", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(Sample{Tick: 0, TotalWatts: 500})

	snap := h.Snapshot()
	snap[0].TotalWatts = 0

	if got := h.Snapshot()[0].TotalWatts; got != 500 {
		t.Fatalf("mutating a snapshot must not affect the history, got %.1f", got)
	}
}

func TestNewHistoryPromotesBadCapacity(t *testing.T) {
	h := NewHistory(0)
	for tick := 0; tick <= DefaultHistoryCap; tick++ {
		h.Append(Sample{Tick: float64(tick)})
	}
	if h.Len() != DefaultHistoryCap {
		t.Fatalf("expected default capacity %d, got %d", DefaultHistoryCap, h.Len())
	}
}
