// v1
// internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type counter struct {
	mu    sync.Mutex
	value uint64
}

func newCounter() *counter {
	return &counter{}
}

func (c *counter) inc() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}

func (c *counter) snapshot() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type counterVec struct {
	mu     sync.RWMutex
	values map[string]uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[string]uint64)}
}

func (c *counterVec) inc(label string) {
	c.mu.Lock()
	c.values[label]++
	c.mu.Unlock()
}

func (c *counterVec) snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.RWMutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(edges []float64) *histogram {
	sorted := append([]float64(nil), edges...)
	sort.Float64s(sorted)
	return &histogram{buckets: sorted, counts: make([]uint64, len(sorted))}
}

func (h *histogram) observe(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if v < 0 {
		v = 0
	}
	h.mu.Lock()
	for i, upper := range h.buckets {
		if v <= upper {
			h.counts[i]++
			break
		}
	}
	h.count++
	h.sum += v
	h.mu.Unlock()
}

func (h *histogram) snapshot() (buckets []float64, counts []uint64, sum float64, count uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	buckets = append([]float64(nil), h.buckets...)
	counts = append([]uint64(nil), h.counts...)
	sum = h.sum
	count = h.count
	return
}

type gauge struct {
	mu    sync.Mutex
	value float64
}

func newGauge() *gauge {
	return &gauge{}
}

func (g *gauge) set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

func (g *gauge) snapshot() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

var (
	httpRequests      = newCounterVec()
	httpLatencies     = newHistogram([]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1})
	deviceUpdates     = newCounterVec()
	actionsRecorded   = newCounter()
	busEvents         = newCounterVec()
	busHandlerPanics  = newCounter()
	powerSamples      = newCounter()
	powerWattsGauge   = newGauge()
	wsClientsGauge    = newGauge()
	wsDroppedMessages = newCounter()
)

// ObserveRequest stores the status distribution and latency of one
// handled HTTP request.
func ObserveRequest(status int, duration time.Duration) {
	httpRequests.inc(strconv.Itoa(status))
	httpLatencies.observe(duration.Seconds())
}

// IncDeviceUpdate counts a successfully applied registry mutation,
// labelled by device kind.
func IncDeviceUpdate(kind string) {
	if strings.TrimSpace(kind) == "" {
		kind = "unknown"
	}
	deviceUpdates.inc(kind)
}

// IncActionRecorded counts one appended action-log entry.
func IncActionRecorded() {
	actionsRecorded.inc()
}

// IncBusEvent counts one published bus event, labelled by event kind.
func IncBusEvent(kind string) {
	if strings.TrimSpace(kind) == "" {
		kind = "unknown"
	}
	busEvents.inc(kind)
}

// IncBusHandlerPanic counts a subscriber callback that panicked during
// delivery and was recovered by the bus.
func IncBusHandlerPanic() {
	busHandlerPanics.inc()
}

// IncPowerSample counts one sample produced by the power sampler.
func IncPowerSample() {
	powerSamples.inc()
}

// SetPowerWatts records the most recently computed total power draw.
func SetPowerWatts(watts float64) {
	if math.IsNaN(watts) || math.IsInf(watts, 0) {
		return
	}
	if watts < 0 {
		watts = 0
	}
	powerWattsGauge.set(watts)
}

// SetWSClients records the number of currently connected websocket
// subscribers.
func SetWSClients(n int) {
	if n < 0 {
		n = 0
	}
	wsClientsGauge.set(float64(n))
}

// IncWSDropped counts broadcast payloads discarded because the hub
// queue was full.
func IncWSDropped() {
	wsDroppedMessages.inc()
}

// Render exports all registered metrics in Prometheus exposition format.
func Render() string {
	var b strings.Builder

	writeMetricHeader(&b, "smarthome_http_requests_total", "counter")
	writeCounter(&b, "smarthome_http_requests_total", "status", httpRequests.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_http_request_duration_seconds", "histogram")
	writeHistogram(&b, "smarthome_http_request_duration_seconds", httpLatencies)
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_device_updates_total", "counter")
	writeCounter(&b, "smarthome_device_updates_total", "kind", deviceUpdates.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_actions_recorded_total", "counter")
	writeSimpleCounter(&b, "smarthome_actions_recorded_total", actionsRecorded.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_bus_events_total", "counter")
	writeCounter(&b, "smarthome_bus_events_total", "kind", busEvents.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_bus_handler_panics_total", "counter")
	writeSimpleCounter(&b, "smarthome_bus_handler_panics_total", busHandlerPanics.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_power_samples_total", "counter")
	writeSimpleCounter(&b, "smarthome_power_samples_total", powerSamples.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_power_watts", "gauge")
	writeGauge(&b, "smarthome_power_watts", powerWattsGauge.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_ws_clients", "gauge")
	writeGauge(&b, "smarthome_ws_clients", wsClientsGauge.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "smarthome_ws_dropped_total", "counter")
	writeSimpleCounter(&b, "smarthome_ws_dropped_total", wsDroppedMessages.snapshot())
	b.WriteByte('\n')

	return b.String()
}

func writeMetricHeader(b *strings.Builder, name, typ string) {
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(typ)
	b.WriteByte('\n')
}

func writeSimpleCounter(b *strings.Builder, name string, value uint64) {
	fmt.Fprintf(b, "%s{} %d\n", name, value)
}

func writeGauge(b *strings.Builder, name string, value float64) {
	fmt.Fprintf(b, "%s{} %g\n", name, value)
}

func writeCounter(b *strings.Builder, name, label string, values map[string]uint64) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s{} %d\n", name, 0)
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "%s{%s=\"%s\"} %d\n", name, label, escapeLabel(key), values[key])
	}
}

func writeHistogram(b *strings.Builder, name string, h *histogram) {
	buckets, counts, sum, count := h.snapshot()
	if len(buckets) == 0 {
		fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
		fmt.Fprintf(b, "%s_sum %f\n", name, sum)
		fmt.Fprintf(b, "%s_count %d\n", name, count)
		return
	}
	var cumulative uint64
	for i, upper := range buckets {
		cumulative += counts[i]
		fmt.Fprintf(b, "%s_bucket{le=\"%g\"} %d\n", name, upper, cumulative)
	}
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
	fmt.Fprintf(b, "%s_sum %f\n", name, sum)
	fmt.Fprintf(b, "%s_count %d\n", name, count)
}

func escapeLabel(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\"", "\\\"")
	return replacer.Replace(v)
}
