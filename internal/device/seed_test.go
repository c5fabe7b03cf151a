// v0
// internal/device/seed_test.go
package device

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadSeedFileParsesAllKinds(t *testing.T) {
	path := writeSeedFile(t, `
devices:
  - id: light1
    kind: light
    name: Living Room Light
    on: true
  - id: fan1
    kind: fan
    speed: 2
  - id: thermo1
    kind: Thermostat
    name: Thermostat
    setpoint: 21.5
  - id: door1
    kind: lock
    name: Front Door Lock
    locked: true
`)

	devices, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(devices) != 4 {
		t.Fatalf("expected 4 devices, got %d", len(devices))
	}

	if !devices[0].On {
		t.Fatalf("expected light1 to be on")
	}
	if devices[1].Speed != 2 {
		t.Fatalf("expected fan speed 2, got %d", devices[1].Speed)
	}
	// Name falls back to the id when the seed omits it.
	if devices[1].Name != "fan1" {
		t.Fatalf("expected name to default to id, got %q", devices[1].Name)
	}
	// Kinds are normalized case-insensitively.
	if devices[2].Kind != KindThermostat {
		t.Fatalf("expected thermostat kind, got %q", devices[2].Kind)
	}
	if devices[2].Setpoint != 21.5 {
		t.Fatalf("expected setpoint 21.5, got %.1f", devices[2].Setpoint)
	}
	if !devices[3].Locked {
		t.Fatalf("expected door1 locked")
	}
}

func TestLoadSeedFileRejectsUnknownKind(t *testing.T) {
	path := writeSeedFile(t, `
devices:
  - id: x1
    kind: dishwasher
`)
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestLoadSeedFileRejectsMissingID(t *testing.T) {
	path := writeSeedFile(t, `
devices:
  - kind: light
`)
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatalf("expected missing id to fail")
	}
}

func TestLoadSeedFileRejectsEmptySet(t *testing.T) {
	path := writeSeedFile(t, "devices: []\n")
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatalf("expected empty device list to fail")
	}
}

func TestLoadSeedFileMissingFile(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}

func TestSeededRegistryClampsFileValues(t *testing.T) {
	path := writeSeedFile(t, `
devices:
  - id: fan9
    kind: fan
    speed: 9
  - id: cold
    kind: thermostat
    setpoint: 4
`)

	devices, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	r, err := NewRegistry(discardLogger(), devices)
	if err != nil {
		t.Fatalf("registry init failed: %v", err)
	}

	fan, _ := r.Get("fan9")
	if fan.Speed != MaxFanSpeed {
		t.Fatalf("expected speed clamped to %d, got %d", MaxFanSpeed, fan.Speed)
	}
	thermo, _ := r.Get("cold")
	if thermo.Setpoint != MinSetpoint {
		t.Fatalf("expected setpoint clamped to %.1f, got %.1f", MinSetpoint, thermo.Setpoint)
	}
}
