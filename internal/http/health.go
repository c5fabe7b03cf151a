// v0
// internal/http/health.go
package httpserver

import "sync"

// HealthState tracks readiness for the HTTP surface. Liveness holds as
// long as the process runs; readiness flips on once the application has
// finished wiring and off again when shutdown begins.
type HealthState struct {
	mu    sync.RWMutex
	ready bool
}

// NewHealthState starts in the not-ready state so probes cannot route
// traffic to a half-wired server.
func NewHealthState() *HealthState {
	return &HealthState{}
}

// SetReady records the current lifecycle phase.
func (h *HealthState) SetReady(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = value
}

// Ready reports whether the server should accept traffic.
func (h *HealthState) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}
