// v2
// internal/sampler/sampler.go
package sampler

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"log/slog"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/power"
)

// DefaultInterval is the pause between samples when the configuration
// does not override it.
const DefaultInterval = 2 * time.Second

// ErrNotIdle is returned by Run when the sampler has already been
// started. Cancelled is terminal: a stopped sampler cannot be reused.
var ErrNotIdle = errors.New("sampler is not idle")

// State tracks the sampler lifecycle.
type State int

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateRunning means the tick loop is active.
	StateRunning
	// StateCancelled means the loop has exited; the sampler is spent.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sampler periodically computes the household's total power draw and
// publishes it as a power sample. One sample is produced immediately on
// start, then one per interval until the context is cancelled.
type Sampler struct {
	registry *device.Registry
	bus      *bus.Bus
	log      *slog.Logger
	interval time.Duration

	mu    sync.Mutex
	state State
	tick  float64
}

// New validates the wiring and returns an idle sampler. Intervals less
// than or equal to zero fall back to DefaultInterval.
func New(registry *device.Registry, b *bus.Bus, logger *slog.Logger, interval time.Duration) (*Sampler, error) {
	if registry == nil {
		return nil, errors.New("registry must not be nil")
	}
	if b == nil {
		return nil, errors.New("bus must not be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		registry: registry,
		bus:      b,
		log:      logger,
		interval: interval,
	}, nil
}

// State reports the current lifecycle state.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tick reports the counter value the next sample will carry.
func (s *Sampler) Tick() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Interval reports the configured pause between samples.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Run drives the tick loop until the context is cancelled. Cancellation
// is observed in the same select as the ticker, at the wake-cycle
// boundary, so the loop never exits with a sample half published. Run
// returns nil on a clean cancellation and ErrNotIdle when called on a
// sampler that is not in its initial state.
func (s *Sampler) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context must not be nil")
	}

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		s.log.Warn("sampler_start_rejected", slog.String("state", state.String()))
		return ErrNotIdle
	}
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateCancelled
		s.mu.Unlock()
	}()

	s.log.Info("sampler_started", slog.String("interval", s.interval.String()))
	s.sample()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sampler_cancelled", slog.Float64("next_tick", s.Tick()))
			return nil
		case <-ticker.C:
			s.sample()
		}
	}
}

// sample computes the current total draw from a registry snapshot and
// publishes it with the next tick value.
func (s *Sampler) sample() {
	total := power.TotalWatts(s.registry.List())

	s.mu.Lock()
	tick := s.tick
	s.tick++
	s.mu.Unlock()

	s.bus.Publish(bus.Event{
		Kind:    bus.KindPowerSample,
		Payload: power.Sample{Tick: tick, TotalWatts: total},
	})

	metrics.IncPowerSample()
	metrics.SetPowerWatts(total)
	s.log.Debug("power_sampled",
		slog.Float64("tick", tick),
		slog.Float64("watts", total),
	)
}
