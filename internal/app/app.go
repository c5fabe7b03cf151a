// v2
// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/gorilla/handlers"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/actionlog"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/config"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
	httpserver "github.com/yendongnguyen/Smart-Home-Controller/internal/http"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/power"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/sampler"
)

// Application wires configuration, logging, the device core, the event
// bus, the sampler, and the HTTP surface, and drives graceful shutdown
// for all of them.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	logFile *os.File

	registry *device.Registry
	bus      *bus.Bus
	actions  *actionlog.Log
	history  *power.History
	hub      *httpserver.Hub
	sampler  *sampler.Sampler

	server *http.Server
	health *httpserver.HealthState
}

// New prepares a fully wired controller instance from the supplied
// configuration: it seeds the registry, connects the bus subscribers in
// a fixed order (history first, then the websocket hub), and assembles
// the HTTP server with CORS and access logging.
func New(cfg config.Config) (*Application, error) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return nil, errors.New("listen address cannot be empty")
	}
	logPath := filepath.Clean(cfg.LogFilePath)
	if logPath == "" {
		return nil, errors.New("log file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := newLogger(lf)

	seeds := device.DefaultDevices()
	if cfg.DevicesPath != "" {
		seeds, err = device.LoadSeedFile(cfg.DevicesPath)
		if err != nil {
			_ = lf.Close()
			return nil, fmt.Errorf("device seed: %w", err)
		}
		logger.Info("device_seed_loaded",
			slog.String("path", cfg.DevicesPath),
			slog.Int("devices", len(seeds)),
		)
	}

	registry, err := device.NewRegistry(logger.With(slog.String("component", "registry")), seeds)
	if err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("registry init: %w", err)
	}

	eventBus := bus.New(logger.With(slog.String("component", "bus")))
	actions := actionlog.New(eventBus, logger.With(slog.String("component", "actionlog")))

	history := power.NewHistory(power.DefaultHistoryCap)
	eventBus.Subscribe(history.HandleEvent)

	hub := httpserver.NewHub(logger.With(slog.String("component", "ws_hub")))
	eventBus.Subscribe(hub.HandleEvent)

	smp, err := sampler.New(registry, eventBus, logger.With(slog.String("component", "sampler")), cfg.SampleInterval)
	if err != nil {
		_ = lf.Close()
		return nil, fmt.Errorf("sampler init: %w", err)
	}

	health := httpserver.NewHealthState()
	router := httpserver.NewRouter(logger, health, httpserver.Services{
		Registry: registry,
		Actions:  actions,
		History:  history,
		Sampler:  smp,
		Bus:      eventBus,
		Hub:      hub,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	handler := httpserver.WrapWithLogging(logger, cors(router))

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPWriteTimeout,
	}

	return &Application{
		cfg:      cfg,
		logger:   logger,
		logFile:  lf,
		registry: registry,
		bus:      eventBus,
		actions:  actions,
		history:  history,
		hub:      hub,
		sampler:  smp,
		server:   server,
		health:   health,
	}, nil
}

// Logger exposes the configured slog logger so callers (such as main)
// can emit structured logs after initialization.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Run blocks until the context is cancelled or a component terminates
// unexpectedly. It manages readiness and graceful shutdown: HTTP stops
// accepting first, then the sampler and the websocket hub drain.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpCh := make(chan error, 1)
	go func() {
		a.health.SetReady(true)
		a.logger.Info("http_server_listen", slog.String("address", a.cfg.ListenAddress))
		httpCh <- a.server.ListenAndServe()
	}()

	samplerCh := make(chan error, 1)
	go func() {
		samplerCh <- a.sampler.Run(ctx)
	}()

	hubDone := make(chan struct{})
	go func() {
		a.hub.Run(ctx)
		close(hubDone)
	}()

	var httpErr error
	var samplerErr error

	for {
		select {
		case err := <-httpCh:
			httpErr = err
			httpCh = nil
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http_server_error", slog.Any("err", err))
			} else {
				a.logger.Info("server_closed")
			}
			cancel()
		case err := <-samplerCh:
			samplerErr = err
			samplerCh = nil
			if err != nil {
				a.logger.Error("sampler_error", slog.Any("err", err))
			} else {
				a.logger.Info("sampler_stopped")
			}
			cancel()
		case <-ctx.Done():
			a.logger.Info("shutdown_signal")
			a.health.SetReady(false)
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				if !errors.Is(err, context.Canceled) {
					a.logger.Error("server_shutdown_failed", slog.Any("err", err))
					if httpErr == nil {
						httpErr = fmt.Errorf("shutdown: %w", err)
					}
				}
			}
			shutdownCancel()

			if httpCh != nil {
				if err := <-httpCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("server_shutdown_error", slog.Any("err", err))
					if httpErr == nil {
						httpErr = err
					}
				}
			}
			if samplerCh != nil {
				if err := <-samplerCh; err != nil {
					a.logger.Error("sampler_shutdown_error", slog.Any("err", err))
					if samplerErr == nil {
						samplerErr = err
					}
				}
			}
			<-hubDone

			if samplerErr != nil {
				return samplerErr
			}
			if httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
				return httpErr
			}
			a.logger.Info("shutdown_complete",
				slog.String("sampler_state", a.sampler.State().String()),
			)
			return nil
		}
	}
}

// Close flushes and closes resources owned by the application instance.
func (a *Application) Close() error {
	if a.logFile == nil {
		return nil
	}
	if err := a.logFile.Close(); err != nil {
		return err
	}
	a.logFile = nil
	return nil
}
