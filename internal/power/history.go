// v1
// internal/power/history.go
package power

import (
	"sync"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
)

// DefaultHistoryCap is the number of samples retained for the dashboard
// chart.
const DefaultHistoryCap = 50

// History keeps the most recent power samples in an append-only bounded
// buffer with strict FIFO eviction. It is safe for concurrent use: the
// sampler appends through the bus while HTTP handlers snapshot.
type History struct {
	mu       sync.RWMutex
	capacity int
	samples  []Sample
}

// NewHistory initializes a bounded history. Capacities less than or
// equal to zero are promoted to DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{capacity: capacity, samples: make([]Sample, 0, capacity)}
}

// HandleEvent is the bus subscriber entry point. Events other than power
// samples are ignored so the history can share the bus with the action
// log feed.
func (h *History) HandleEvent(evt bus.Event) {
	if evt.Kind != bus.KindPowerSample {
		return
	}
	sample, ok := evt.Payload.(Sample)
	if !ok {
		return
	}
	h.Append(sample)
}

// Append registers a new sample, evicting the oldest one once the
// configured capacity is reached. The returned count is the buffer
// length after the append; when an eviction occurs the removed sample is
// returned for logging.
func (h *History) Append(sample Sample) (count int, evicted *Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.capacity {
		removed := h.samples[0]
		h.samples = append(h.samples[1:], sample)
		return len(h.samples), &removed
	}
	h.samples = append(h.samples, sample)
	return len(h.samples), nil
}

// Snapshot clones and returns the buffered samples, oldest first. The
// caller receives a defensive copy that is safe to mutate.
func (h *History) Snapshot() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.samples) == 0 {
		return nil
	}
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Len reports the current number of buffered samples.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}
