// v0
// internal/metrics/metrics_test.go
package metrics

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestRenderExposesAllSeries(t *testing.T) {
	ObserveRequest(200, 3*time.Millisecond)
	ObserveRequest(404, 120*time.Millisecond)
	IncDeviceUpdate("fan")
	IncActionRecorded()
	IncBusEvent("log")
	IncBusEvent("powerSample")
	IncBusHandlerPanic()
	IncPowerSample()
	SetPowerWatts(540)
	SetWSClients(2)
	IncWSDropped()

	out := Render()

	wantFragments := []string{
		"# TYPE smarthome_http_requests_total counter",
		`smarthome_http_requests_total{status="200"}`,
		`smarthome_http_requests_total{status="404"}`,
		"# TYPE smarthome_http_request_duration_seconds histogram",
		"smarthome_http_request_duration_seconds_count",
		`smarthome_http_request_duration_seconds_bucket{le="+Inf"}`,
		`smarthome_device_updates_total{kind="fan"} 1`,
		"smarthome_actions_recorded_total{} 1",
		`smarthome_bus_events_total{kind="log"} 1`,
		`smarthome_bus_events_total{kind="powerSample"} 1`,
		"smarthome_bus_handler_panics_total{} 1",
		"smarthome_power_samples_total{} 1",
		"smarthome_power_watts{} 540",
		"smarthome_ws_clients{} 2",
		"smarthome_ws_dropped_total{} 1",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected exposition to contain %q, got:\n%s", fragment, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{0.1, 0.5, 1})

	h.observe(0.05)
	h.observe(0.05)
	h.observe(0.3)
	h.observe(2) // above every bucket, counted only in +Inf

	buckets, counts, sum, count := h.snapshot()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if counts[0] != 2 || counts[1] != 1 || counts[2] != 0 {
		t.Fatalf("unexpected per-bucket counts %v", counts)
	}
	if count != 4 {
		t.Fatalf("expected 4 observations, got %d", count)
	}
	if math.Abs(sum-2.4) > 1e-9 {
		t.Fatalf("unexpected sum %f", sum)
	}

	var b strings.Builder
	writeHistogram(&b, "test_hist", h)
	out := b.String()
	for _, fragment := range []string{
		`test_hist_bucket{le="0.1"} 2`,
		`test_hist_bucket{le="0.5"} 3`,
		`test_hist_bucket{le="1"} 3`,
		`test_hist_bucket{le="+Inf"} 4`,
		"test_hist_count 4",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in:\n%s", fragment, out)
		}
	}
}

func TestHistogramRejectsNonFinite(t *testing.T) {
	h := newHistogram([]float64{1})
	h.observe(0.5)
	h.observe(math.NaN())
	h.observe(math.Inf(1))

	_, _, _, count := h.snapshot()
	if count != 1 {
		t.Fatalf("expected non-finite observation to be dropped, got count %d", count)
	}
}

func TestGaugeClampsNegativeClients(t *testing.T) {
	SetWSClients(-5)
	if got := wsClientsGauge.snapshot(); got != 0 {
		t.Fatalf("expected negative client count clamped to 0, got %g", got)
	}
}

func TestCounterVecLabelsEscaped(t *testing.T) {
	var b strings.Builder
	writeCounter(&b, "test_total", "label", map[string]uint64{`quo"te`: 1})
	if !strings.Contains(b.String(), `label="quo\"te"`) {
		t.Fatalf("expected escaped label, got %s", b.String())
	}
}
