// v0
// internal/http/status.go
package httpserver

import "net/http"

type statusResponse struct {
	Sampler       string  `json:"sampler"`
	Tick          float64 `json:"tick"`
	HistoryLength int     `json:"historyLength"`
	Devices       int     `json:"devices"`
	Subscribers   int     `json:"subscribers"`
}

func (h *apiHandlers) status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.log, http.StatusOK, statusResponse{
		Sampler:       h.svc.Sampler.State().String(),
		Tick:          h.svc.Sampler.Tick(),
		HistoryLength: h.svc.History.Len(),
		Devices:       h.svc.Registry.Len(),
		Subscribers:   h.svc.Bus.SubscriberCount(),
	})
}
