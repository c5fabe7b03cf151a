// v2
// internal/http/devices.go
package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/actionlog"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/power"
)

// deviceView is the wire shape of one device. Exactly one of the variant
// pointers is set, matching the device kind, so clients never see
// meaningless zero fields from the other variants.
type deviceView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	IsOn     *bool    `json:"isOn,omitempty"`
	Speed    *int     `json:"speed,omitempty"`
	Setpoint *float64 `json:"setpoint,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`
}

func newDeviceView(d device.Device) deviceView {
	view := deviceView{ID: d.ID, Name: d.Name, Kind: string(d.Kind)}
	switch d.Kind {
	case device.KindLight:
		on := d.On
		view.IsOn = &on
	case device.KindFan:
		speed := d.Speed
		view.Speed = &speed
	case device.KindThermostat:
		setpoint := d.Setpoint
		view.Setpoint = &setpoint
	case device.KindLock:
		locked := d.Locked
		view.Locked = &locked
	}
	return view
}

type devicesResponse struct {
	Devices []deviceView `json:"devices"`
	Count   int          `json:"count"`
}

type deviceDetail struct {
	deviceView
	Watts float64          `json:"watts"`
	Log   []actionlog.Entry `json:"log"`
}

func (h *apiHandlers) listDevices(w http.ResponseWriter, r *http.Request) {
	devices := h.svc.Registry.List()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, newDeviceView(d))
	}
	respondJSON(w, h.log, http.StatusOK, devicesResponse{Devices: views, Count: len(views)})
}

func (h *apiHandlers) getDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	d, err := h.svc.Registry.Get(id)
	if err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}
	detail := deviceDetail{
		deviceView: newDeviceView(d),
		Watts:      power.Watts(d),
		Log:        h.svc.Actions.ByDevice(id),
	}
	respondJSON(w, h.log, http.StatusOK, detail)
}

// decodeBody unmarshals the JSON request body into dst, rejecting
// payloads with fields this API does not know about so typos fail loudly
// instead of silently applying a zero value.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (h *apiHandlers) cmdSwitch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		On bool `json:"on"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, h.log, newBadRequest("invalid switch payload", err))
		return
	}

	updated, err := h.svc.Registry.SetLightOn(id, body.On)
	if err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}

	action := "Turned OFF"
	if updated.On {
		action = "Turned ON"
	}
	h.svc.Actions.Record(id, action)
	respondJSON(w, h.log, http.StatusOK, newDeviceView(updated))
}

func (h *apiHandlers) cmdSpeed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Speed int `json:"speed"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, h.log, newBadRequest("invalid speed payload", err))
		return
	}

	updated, err := h.svc.Registry.SetFanSpeed(id, body.Speed)
	if err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}

	h.svc.Actions.Record(id, fmt.Sprintf("Speed set to %d", updated.Speed))
	respondJSON(w, h.log, http.StatusOK, newDeviceView(updated))
}

func (h *apiHandlers) cmdSetpoint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Setpoint float64 `json:"setpoint"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, h.log, newBadRequest("invalid setpoint payload", err))
		return
	}

	updated, err := h.svc.Registry.SetThermostatSetpoint(id, body.Setpoint)
	if err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}

	h.svc.Actions.Record(id, fmt.Sprintf("Temperature set to %.1f°C", updated.Setpoint))
	respondJSON(w, h.log, http.StatusOK, newDeviceView(updated))
}

func (h *apiHandlers) cmdLock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Locked bool `json:"locked"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, h.log, newBadRequest("invalid lock payload", err))
		return
	}

	updated, err := h.svc.Registry.SetLockLocked(id, body.Locked)
	if err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}

	action := "Unlocked"
	if updated.Locked {
		action = "Locked"
	}
	h.svc.Actions.Record(id, action)
	respondJSON(w, h.log, http.StatusOK, newDeviceView(updated))
}
