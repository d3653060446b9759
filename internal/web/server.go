// Package web serves the login history dashboard.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/user/wifiauth/internal/storage"
	"github.com/user/wifiauth/internal/telemetry"
	"github.com/user/wifiauth/internal/util"
)

// Server is the dashboard HTTP server.
type Server struct {
	attempts *storage.AttemptStorage
	config   util.DashboardConfig
	srv      *http.Server
}

// NewServer creates a dashboard server over attempts.
func NewServer(attempts *storage.AttemptStorage, cfg util.DashboardConfig) *Server {
	return &Server{
		attempts: attempts,
		config:   cfg,
	}
}

// Handler builds the routed handler. Everything but /health requires
// basic auth.
func (s *Server) Handler() http.Handler {
	h := NewHandlers(s.attempts)
	auth := NewBasicAuth(s.config.Username, s.config.Password)

	router := mux.NewRouter()
	router.Use(requestLogger)

	router.HandleFunc("/health", h.Health).Methods("GET")

	protected := router.NewRoute().Subrouter()
	protected.Use(auth.Middleware)
	protected.HandleFunc("/", h.Dashboard).Methods("GET")
	protected.HandleFunc("/api/attempts", h.APIAttempts).Methods("GET")
	protected.HandleFunc("/api/stats", h.APIStats).Methods("GET")
	protected.HandleFunc("/api/network-stats", h.APINetworkStats).Methods("GET")
	protected.HandleFunc("/api/hourly-stats", h.APIHourlyStats).Methods("GET")
	protected.HandleFunc("/report", h.DownloadReport).Methods("GET")
	protected.Handle("/metrics", telemetry.Handler(telemetry.NewRegistry(s.attempts))).Methods("GET")

	return router
}

// Start serves until SIGINT, SIGTERM or ctx cancellation.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Password == util.DefaultDashboardPassword {
		util.Warn("Dashboard is using the default password; set dashboard.password in the config")
	}

	s.srv = &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		util.Info("Dashboard listening on http://%s", s.config.Addr())
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		util.Info("Dashboard shutting down")
		return s.Stop()
	}
}

// Stop stops the web server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
