// v2
// internal/http/router.go
package httpserver

import (
	"net/http"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/actionlog"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/power"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/sampler"
)

// Services bundles the core components the HTTP surface exposes. The
// router stays agnostic to how they were wired together.
type Services struct {
	Registry *device.Registry
	Actions  *actionlog.Log
	History  *power.History
	Sampler  *sampler.Sampler
	Bus      *bus.Bus
	Hub      *Hub
}

type apiHandlers struct {
	log *slog.Logger
	svc Services
}

// NewRouter wires all routes exposed by the controller: health probes
// and metrics at the root, the JSON API under /api, and the websocket
// event feed at /ws.
func NewRouter(logger *slog.Logger, health *HealthState, svc Services) *mux.Router {
	h := &apiHandlers{log: logger, svc: svc}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleLive).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady(health)).Methods(http.MethodGet)
	r.HandleFunc("/metrics", handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/devices", h.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", h.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}/switch", h.cmdSwitch).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/speed", h.cmdSpeed).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/setpoint", h.cmdSetpoint).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/lock", h.cmdLock).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/logs", h.deviceLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs", h.allLogs).Methods(http.MethodGet)
	api.HandleFunc("/power", h.currentPower).Methods(http.MethodGet)
	api.HandleFunc("/power/history", h.powerHistory).Methods(http.MethodGet)
	api.HandleFunc("/power/history/msgpack", h.powerHistoryMsgpack).Methods(http.MethodGet)
	api.HandleFunc("/status", h.status).Methods(http.MethodGet)

	if svc.Hub != nil {
		r.HandleFunc("/ws", svc.Hub.HandleWS).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, logger, &APIError{
			Status:  http.StatusNotFound,
			Code:    "NOT_FOUND",
			Message: "no such route: " + req.URL.Path,
		})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, logger, &APIError{
			Status:  http.StatusMethodNotAllowed,
			Code:    "METHOD_NOT_ALLOWED",
			Message: req.Method + " not allowed on " + req.URL.Path,
		})
	})

	logger.Info("http_routes_registered")
	return r
}

func handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func handleReady(health *HealthState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !health.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(metrics.Render()))
}
