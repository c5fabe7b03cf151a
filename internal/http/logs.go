// v1
// internal/http/logs.go
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/actionlog"
)

type logsResponse struct {
	Entries []actionlog.Entry `json:"entries"`
	Count   int               `json:"count"`
}

type deviceLogsResponse struct {
	DeviceID string            `json:"deviceId"`
	Entries  []actionlog.Entry `json:"entries"`
	Count    int               `json:"count"`
}

func (h *apiHandlers) allLogs(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Actions.All()
	respondJSON(w, h.log, http.StatusOK, logsResponse{Entries: entries, Count: len(entries)})
}

// deviceLogs serves the per-device detail view. The id must name a
// registered device so a typo is distinguishable from a device with no
// history yet.
func (h *apiHandlers) deviceLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.svc.Registry.Get(id); err != nil {
		respondError(w, h.log, fromDeviceError(err))
		return
	}
	entries := h.svc.Actions.ByDevice(id)
	respondJSON(w, h.log, http.StatusOK, deviceLogsResponse{DeviceID: id, Entries: entries, Count: len(entries)})
}
