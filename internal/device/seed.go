// v1
// internal/device/seed.go
package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML shape of one device in a seed file. Only the field
// matching the declared kind is read; the others may be omitted.
type Seed struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Name     string  `yaml:"name"`
	On       bool    `yaml:"on"`
	Speed    int     `yaml:"speed"`
	Setpoint float64 `yaml:"setpoint"`
	Locked   bool    `yaml:"locked"`
}

type seedFile struct {
	Devices []Seed `yaml:"devices"`
}

// LoadSeedFile reads a YAML seed file and converts it into the device
// set the registry boots with. Structural problems (unknown kind, blank
// id, empty list) are reported here; range clamping of numeric values is
// left to NewRegistry.
func LoadSeedFile(path string) ([]Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(parsed.Devices) == 0 {
		return nil, fmt.Errorf("seed file %s declares no devices", path)
	}

	out := make([]Device, 0, len(parsed.Devices))
	for i, seed := range parsed.Devices {
		if seed.ID == "" {
			return nil, fmt.Errorf("seed file %s: device %d has no id", path, i)
		}
		kind, err := ParseKind(seed.Kind)
		if err != nil {
			return nil, fmt.Errorf("seed file %s: device %q: %w", path, seed.ID, err)
		}
		name := seed.Name
		if name == "" {
			name = seed.ID
		}

		d := Device{ID: seed.ID, Name: name, Kind: kind}
		switch kind {
		case KindLight:
			d.On = seed.On
		case KindFan:
			d.Speed = seed.Speed
		case KindThermostat:
			d.Setpoint = seed.Setpoint
		case KindLock:
			d.Locked = seed.Locked
		}
		out = append(out, d)
	}
	return out, nil
}
