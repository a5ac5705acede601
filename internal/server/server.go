// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"heyq/internal/application/port/input"
	"heyq/internal/application/port/output"
)

type Server struct {
	http *http.Server
	orch input.Orchestrator
	log  output.LoggerPort
}

func New(addr string, orch input.Orchestrator, log output.LoggerPort) *Server {
	s := &Server{orch: orch, log: log}

	requestLogger := httplog.NewLogger("heyq", httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/run", s.handleRun)
		r.Post("/clear", s.handleClear)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req input.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, input.RunResponse{OK: false, Error: "bad_request: invalid JSON body"})
		return
	}
	if req.Utterance == "" {
		writeJSON(w, http.StatusBadRequest, input.RunResponse{OK: false, Error: "bad_request: utterance is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	resp := s.orch.Run(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request: invalid JSON body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	s.orch.Clear(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
