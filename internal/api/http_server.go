package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"northline/internal/config"
	"northline/internal/models"
	"northline/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking JSON API.
type HTTPServer struct {
	cfg         config.APIHTTPConfig
	adminHeader string
	service     *service.BookingService
	server      *http.Server
	logger      zerolog.Logger
	now         func() time.Time
}

func NewHTTPServer(cfg config.APIHTTPConfig, admin config.AdminConfig, svc *service.BookingService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:         cfg,
		adminHeader: admin.Header,
		service:     svc,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	if logger != nil {
		srv.logger = logger.With().Str("component", "http").Logger()
	}
	if srv.adminHeader == "" {
		srv.adminHeader = models.AdminPasscodeHeader
	}
	if srv.cfg.MaxBodyBytes <= 0 {
		srv.cfg.MaxBodyBytes = 1 << 20
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 15 * time.Second
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	return srv
}

// Handler returns the routed handler with the middleware chain applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/", s.handleBookingByID)
	mux.HandleFunc("/api/bookings/export", s.handleExport)
	mux.HandleFunc("/api/admin/unlock", s.handleUnlock)
	mux.HandleFunc("/api/spec", s.handleSpec)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})

	return requestIDMiddleware(s.loggingMiddleware(s.recoverMiddleware(noStoreMiddleware(mux))))
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"ok": false, "message": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
