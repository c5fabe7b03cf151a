// v2
// internal/device/registry.go
package device

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"log/slog"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
)

// Registry owns the current state of the fixed device set. The set is
// established once at construction and never grows or shrinks; only the
// variant field of an existing device can change. All mutations are
// serialized behind one mutex so no two updates interleave mid-write,
// and every accessor hands out copies, never pointers into the map.
type Registry struct {
	log *slog.Logger

	mu      sync.RWMutex
	order   []string
	devices map[string]*Device
}

// NewRegistry builds a registry from the supplied seed devices. Seeds
// must be non-empty with unique non-blank ids and valid kinds; numeric
// seed values outside the documented ranges are clamped with a warning
// so a hand-edited seed file cannot boot the system into an illegal
// state.
func NewRegistry(logger *slog.Logger, seeds []Device) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if len(seeds) == 0 {
		return nil, errors.New("registry requires at least one device")
	}

	r := &Registry{
		log:     logger,
		order:   make([]string, 0, len(seeds)),
		devices: make(map[string]*Device, len(seeds)),
	}

	for _, seed := range seeds {
		if seed.ID == "" {
			return nil, errors.New("device id cannot be empty")
		}
		if !seed.Kind.Valid() {
			return nil, fmt.Errorf("device %q: unknown kind %q", seed.ID, seed.Kind)
		}
		if _, exists := r.devices[seed.ID]; exists {
			return nil, fmt.Errorf("duplicate device id %q", seed.ID)
		}

		d := seed
		switch d.Kind {
		case KindFan:
			d.Speed = r.clampSpeed(d.ID, d.Speed)
		case KindThermostat:
			if math.IsNaN(d.Setpoint) || math.IsInf(d.Setpoint, 0) {
				return nil, fmt.Errorf("device %q: setpoint must be finite", d.ID)
			}
			d.Setpoint = r.clampSetpoint(d.ID, d.Setpoint)
		}

		r.order = append(r.order, d.ID)
		r.devices[d.ID] = &d
	}

	r.log.Info("registry_seeded", slog.Int("devices", len(r.order)))
	return r, nil
}

// Get returns a snapshot of the device with the given id.
func (r *Registry) Get(id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	if !ok {
		return Device{}, &NotFoundError{ID: id}
	}
	return *d, nil
}

// List returns snapshots of every device in seed order.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.devices[id])
	}
	return out
}

// Len reports the fixed number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// SetLightOn switches a light on or off and returns the updated
// snapshot.
func (r *Registry) SetLightOn(id string, on bool) (Device, error) {
	return r.mutate(id, KindLight, "isOn", func(d *Device) {
		d.On = on
	})
}

// SetFanSpeed sets a fan's speed step, clamping the request into
// [MinFanSpeed, MaxFanSpeed].
func (r *Registry) SetFanSpeed(id string, speed int) (Device, error) {
	applied := r.clampSpeed(id, speed)
	return r.mutate(id, KindFan, "speed", func(d *Device) {
		d.Speed = applied
	})
}

// SetThermostatSetpoint sets a thermostat's target temperature, clamping
// the request into [MinSetpoint, MaxSetpoint]. Non-finite values cannot
// be clamped meaningfully and are rejected.
func (r *Registry) SetThermostatSetpoint(id string, setpoint float64) (Device, error) {
	if math.IsNaN(setpoint) || math.IsInf(setpoint, 0) {
		return Device{}, &InvalidValueError{ID: id, Field: "setpoint", Reason: "value must be finite"}
	}
	applied := r.clampSetpoint(id, setpoint)
	return r.mutate(id, KindThermostat, "setpoint", func(d *Device) {
		d.Setpoint = applied
	})
}

// SetLockLocked engages or releases a lock and returns the updated
// snapshot.
func (r *Registry) SetLockLocked(id string, locked bool) (Device, error) {
	return r.mutate(id, KindLock, "locked", func(d *Device) {
		d.Locked = locked
	})
}

// mutate applies one field change to the identified device while holding
// the write lock. The target must exist and match the expected kind;
// otherwise the registry is left untouched and a typed error is
// returned.
func (r *Registry) mutate(id string, kind Kind, field string, apply func(*Device)) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, &NotFoundError{ID: id}
	}
	if d.Kind != kind {
		return Device{}, &InvalidValueError{
			ID:     id,
			Field:  field,
			Reason: fmt.Sprintf("device is a %s, not a %s", d.Kind, kind),
		}
	}

	apply(d)
	metrics.IncDeviceUpdate(string(kind))
	r.log.Info("device_updated",
		slog.String("device", id),
		slog.String("kind", string(kind)),
		slog.String("field", field),
	)
	return *d, nil
}

func (r *Registry) clampSpeed(id string, speed int) int {
	applied := speed
	if applied < MinFanSpeed {
		applied = MinFanSpeed
	}
	if applied > MaxFanSpeed {
		applied = MaxFanSpeed
	}
	if applied != speed {
		r.log.Warn("fan_speed_clamped",
			slog.String("device", id),
			slog.Int("requested", speed),
			slog.Int("applied", applied),
		)
	}
	return applied
}

func (r *Registry) clampSetpoint(id string, setpoint float64) float64 {
	applied := setpoint
	if applied < MinSetpoint {
		applied = MinSetpoint
	}
	if applied > MaxSetpoint {
		applied = MaxSetpoint
	}
	if applied != setpoint {
		r.log.Warn("setpoint_clamped",
			slog.String("device", id),
			slog.Float64("requested", setpoint),
			slog.Float64("applied", applied),
		)
	}
	return applied
}
