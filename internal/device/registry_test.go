// v0
// internal/device/registry_test.go
package device

import (
	"errors"
	"io"
	"math"
	"testing"

	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(discardLogger(), DefaultDevices())
	if err != nil {
		t.Fatalf("registry init failed: %v", err)
	}
	return r
}

func TestDefaultDevicesSeedTheRegistry(t *testing.T) {
	r := newTestRegistry(t)

	if r.Len() != 4 {
		t.Fatalf("expected 4 devices, got %d", r.Len())
	}

	got := r.List()
	wantIDs := []string{"light1", "fan1", "thermo1", "door1"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("expected device %d to be %s, got %s", i, id, got[i].ID)
		}
	}

	thermo, err := r.Get("thermo1")
	if err != nil {
		t.Fatalf("get thermo1 failed: %v", err)
	}
	if thermo.Setpoint != 22.0 {
		t.Fatalf("expected setpoint 22.0, got %.1f", thermo.Setpoint)
	}

	lock, err := r.Get("door1")
	if err != nil {
		t.Fatalf("get door1 failed: %v", err)
	}
	if !lock.Locked {
		t.Fatalf("expected door1 to boot locked")
	}
}

func TestGetUnknownDeviceFailsTyped(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("nonexistent")
	if err == nil {
		t.Fatalf("expected error for unknown device")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if notFound.ID != "nonexistent" {
		t.Fatalf("expected error to carry id, got %q", notFound.ID)
	}
}

func TestUpdateUnknownDeviceLeavesStateUntouched(t *testing.T) {
	r := newTestRegistry(t)
	before := r.List()

	_, err := r.SetLightOn("nonexistent", true)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	after := r.List()
	if len(after) != len(before) {
		t.Fatalf("device count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("device %s changed: %+v -> %+v", before[i].ID, before[i], after[i])
		}
	}
}

func TestSetLightOnRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	updated, err := r.SetLightOn("light1", true)
	if err != nil {
		t.Fatalf("switch on failed: %v", err)
	}
	if !updated.On {
		t.Fatalf("expected returned snapshot to be on")
	}

	stored, err := r.Get("light1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.On {
		t.Fatalf("expected stored device to be on")
	}

	updated, err = r.SetLightOn("light1", false)
	if err != nil {
		t.Fatalf("switch off failed: %v", err)
	}
	if updated.On {
		t.Fatalf("expected returned snapshot to be off")
	}
}

func TestSetFanSpeedClampsIntoRange(t *testing.T) {
	r := newTestRegistry(t)

	cases := []struct {
		requested int
		applied   int
	}{
		{requested: 7, applied: 3},
		{requested: -2, applied: 0},
		{requested: 2, applied: 2},
		{requested: MaxFanSpeed, applied: MaxFanSpeed},
		{requested: MinFanSpeed, applied: MinFanSpeed},
	}
	for _, tc := range cases {
		updated, err := r.SetFanSpeed("fan1", tc.requested)
		if err != nil {
			t.Fatalf("set speed %d failed: %v", tc.requested, err)
		}
		if updated.Speed != tc.applied {
			t.Fatalf("requested %d: expected applied speed %d, got %d", tc.requested, tc.applied, updated.Speed)
		}
	}
}

func TestSetThermostatSetpointClampsIntoRange(t *testing.T) {
	r := newTestRegistry(t)

	cases := []struct {
		requested float64
		applied   float64
	}{
		{requested: 9, applied: 15},
		{requested: 42, applied: 30},
		{requested: 25, applied: 25},
		{requested: MinSetpoint, applied: MinSetpoint},
		{requested: MaxSetpoint, applied: MaxSetpoint},
	}
	for _, tc := range cases {
		updated, err := r.SetThermostatSetpoint("thermo1", tc.requested)
		if err != nil {
			t.Fatalf("set setpoint %.1f failed: %v", tc.requested, err)
		}
		if updated.Setpoint != tc.applied {
			t.Fatalf("requested %.1f: expected applied setpoint %.1f, got %.1f", tc.requested, tc.applied, updated.Setpoint)
		}
	}
}

func TestSetThermostatSetpointRejectsNonFinite(t *testing.T) {
	r := newTestRegistry(t)
	before, _ := r.Get("thermo1")

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := r.SetThermostatSetpoint("thermo1", v)
		var invalid *InvalidValueError
		if !errors.As(err, &invalid) {
			t.Fatalf("value %v: expected InvalidValueError, got %v", v, err)
		}
		if invalid.Field != "setpoint" {
			t.Fatalf("expected error on setpoint field, got %q", invalid.Field)
		}
	}

	after, _ := r.Get("thermo1")
	if after != before {
		t.Fatalf("rejected update mutated the device: %+v -> %+v", before, after)
	}
}

func TestMutationRejectsWrongKind(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.SetFanSpeed("light1", 2)
	var invalid *InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if invalid.ID != "light1" {
		t.Fatalf("expected error to name light1, got %q", invalid.ID)
	}

	light, _ := r.Get("light1")
	if light.Speed != 0 {
		t.Fatalf("expected wrong-kind update to leave device untouched")
	}

	if _, err := r.SetLockLocked("thermo1", true); err == nil {
		t.Fatalf("expected lock command on thermostat to fail")
	}
}

func TestSetLockLockedRoundTrip(t *testing.T) {
	r := newTestRegistry(t)

	updated, err := r.SetLockLocked("door1", false)
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if updated.Locked {
		t.Fatalf("expected door1 to be unlocked")
	}

	updated, err = r.SetLockLocked("door1", true)
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if !updated.Locked {
		t.Fatalf("expected door1 to be locked")
	}
}

func TestNewRegistryRejectsBadSeeds(t *testing.T) {
	if _, err := NewRegistry(discardLogger(), nil); err == nil {
		t.Fatalf("expected empty seed set to be rejected")
	}

	if _, err := NewRegistry(discardLogger(), []Device{{ID: "", Kind: KindLight}}); err == nil {
		t.Fatalf("expected blank id to be rejected")
	}

	if _, err := NewRegistry(discardLogger(), []Device{{ID: "x1", Kind: Kind("toaster")}}); err == nil {
		t.Fatalf("expected unknown kind to be rejected")
	}

	dupes := []Device{
		{ID: "light1", Kind: KindLight},
		{ID: "light1", Kind: KindLight},
	}
	if _, err := NewRegistry(discardLogger(), dupes); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}

	bad := []Device{{ID: "thermo1", Kind: KindThermostat, Setpoint: math.NaN()}}
	if _, err := NewRegistry(discardLogger(), bad); err == nil {
		t.Fatalf("expected non-finite seed setpoint to be rejected")
	}
}

func TestNewRegistryClampsSeedValues(t *testing.T) {
	seeds := []Device{
		{ID: "fan1", Kind: KindFan, Speed: 9},
		{ID: "thermo1", Kind: KindThermostat, Setpoint: 99},
	}
	r, err := NewRegistry(discardLogger(), seeds)
	if err != nil {
		t.Fatalf("registry init failed: %v", err)
	}

	fan, _ := r.Get("fan1")
	if fan.Speed != MaxFanSpeed {
		t.Fatalf("expected seed speed clamped to %d, got %d", MaxFanSpeed, fan.Speed)
	}
	thermo, _ := r.Get("thermo1")
	if thermo.Setpoint != MaxSetpoint {
		t.Fatalf("expected seed setpoint clamped to %.1f, got %.1f", MaxSetpoint, thermo.Setpoint)
	}
}

func TestListReturnsSnapshots(t *testing.T) {
	r := newTestRegistry(t)

	listed := r.List()
	listed[0].On = true

	stored, _ := r.Get(listed[0].ID)
	if stored.On {
		t.Fatalf("mutating a listed snapshot must not affect the registry")
	}
}

func TestParseKindNormalizes(t *testing.T) {
	k, err := ParseKind("  Thermostat ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if k != KindThermostat {
		t.Fatalf("expected thermostat kind, got %q", k)
	}

	if _, err := ParseKind("dishwasher"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}
