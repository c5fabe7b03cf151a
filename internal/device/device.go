// v2
// internal/device/device.go
package device

import (
	"fmt"
	"strings"
)

// Kind discriminates the four simulated device variants. Every switch
// over a Kind must cover all four constants plus a default arm for
// corrupt input.
type Kind string

const (
	KindLight      Kind = "light"
	KindFan        Kind = "fan"
	KindThermostat Kind = "thermostat"
	KindLock       Kind = "lock"
)

// Valid reports whether k names one of the supported device variants.
func (k Kind) Valid() bool {
	switch k {
	case KindLight, KindFan, KindThermostat, KindLock:
		return true
	default:
		return false
	}
}

// ParseKind normalizes and validates a textual kind, as read from seed
// files or request paths.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown device kind %q", raw)
	}
	return k, nil
}

// Clamp bounds for the two numeric device fields. Values outside these
// ranges are pulled to the nearest bound rather than rejected.
const (
	MinFanSpeed = 0
	MaxFanSpeed = 3

	MinSetpoint = 15.0
	MaxSetpoint = 30.0
)

// Device is the registry's unit of state. Kind selects which of the
// variant fields is meaningful: On for lights, Speed for fans, Setpoint
// for thermostats, Locked for locks. The remaining fields stay at their
// zero values and are never rendered for that device.
type Device struct {
	ID   string
	Name string
	Kind Kind

	On       bool
	Speed    int
	Setpoint float64
	Locked   bool
}

// DefaultDevices returns the canonical four-device household the
// registry boots with when no seed file is configured.
func DefaultDevices() []Device {
	return []Device{
		{ID: "light1", Name: "Living Room Light", Kind: KindLight, On: false},
		{ID: "fan1", Name: "Ceiling Fan", Kind: KindFan, Speed: 0},
		{ID: "thermo1", Name: "Thermostat", Kind: KindThermostat, Setpoint: 22.0},
		{ID: "door1", Name: "Front Door Lock", Kind: KindLock, Locked: true},
	}
}
