// v1
// internal/power/power.go
package power

import (
	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
)

// Fixed draw figures for the simulated household. A thermostat only
// draws when heating, which the model approximates as any setpoint
// strictly above the threshold.
const (
	LightWatts          = 40.0
	FanStepWatts        = 20.0
	ThermostatWatts     = 500.0
	ThermostatThreshold = 20.0
)

// Sample is one observation produced by the sampler: a monotonic tick
// counter and the total draw computed at that tick.
type Sample struct {
	Tick       float64 `json:"t" msgpack:"t"`
	TotalWatts float64 `json:"totalPower" msgpack:"totalPower"`
}

// Watts returns the instantaneous draw of a single device. The switch is
// exhaustive over device kinds; unknown kinds draw nothing.
func Watts(d device.Device) float64 {
	switch d.Kind {
	case device.KindLight:
		if d.On {
			return LightWatts
		}
		return 0
	case device.KindFan:
		return float64(d.Speed) * FanStepWatts
	case device.KindThermostat:
		if d.Setpoint > ThermostatThreshold {
			return ThermostatWatts
		}
		return 0
	case device.KindLock:
		return 0
	default:
		return 0
	}
}

// TotalWatts sums the draw of every device in the snapshot. Pure: the
// result depends only on the supplied snapshot, so repeated calls over
// the same slice always agree.
func TotalWatts(devices []device.Device) float64 {
	var total float64
	for _, d := range devices {
		total += Watts(d)
	}
	return total
}
