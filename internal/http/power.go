// v1
// internal/http/power.go
package httpserver

import (
	"net/http"

	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/power"
)

type powerResponse struct {
	TotalPower float64 `json:"totalPower"`
}

type historyResponse struct {
	Samples []power.Sample `json:"samples" msgpack:"samples"`
	Count   int            `json:"count" msgpack:"count"`
}

// currentPower computes the draw live from the registry rather than
// reading the last sample, so the figure reflects mutations made since
// the previous tick.
func (h *apiHandlers) currentPower(w http.ResponseWriter, r *http.Request) {
	total := power.TotalWatts(h.svc.Registry.List())
	respondJSON(w, h.log, http.StatusOK, powerResponse{TotalPower: total})
}

func (h *apiHandlers) powerHistory(w http.ResponseWriter, r *http.Request) {
	samples := h.svc.History.Snapshot()
	respondJSON(w, h.log, http.StatusOK, historyResponse{Samples: samples, Count: len(samples)})
}

// powerHistoryMsgpack serves the same payload as powerHistory in msgpack
// for chart frontends polling at interval; at 50 samples per response
// the compact encoding keeps the refresh cheap.
func (h *apiHandlers) powerHistoryMsgpack(w http.ResponseWriter, r *http.Request) {
	samples := h.svc.History.Snapshot()
	data, err := msgpack.Marshal(historyResponse{Samples: samples, Count: len(samples)})
	if err != nil {
		respondError(w, h.log, newInternal("failed to encode msgpack", err))
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error("write_response_failed", slog.Any("err", err))
	}
}
