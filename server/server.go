// Package server exposes the assistant over HTTP. A single POST /query
// endpoint accepts a user utterance with an optional per-request timeout and
// session id, mirroring what a voice shortcut or webhook integration sends.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpcolombo/mayordomo"
	"github.com/jpcolombo/mayordomo/logging"
)

// QueryHandler answers user queries. *mayordomo.Assistant satisfies it.
type QueryHandler interface {
	HandleQuery(ctx context.Context, q mayordomo.Query) mayordomo.Reply
}

var _ QueryHandler = (*mayordomo.Assistant)(nil)

// Options configures the HTTP server.
type Options struct {
	Logger logging.Logger
}

// Server is the HTTP front end for a QueryHandler.
type Server struct {
	handler QueryHandler
	logger  logging.Logger
	mux     chi.Router
}

// New builds a Server with its routes mounted.
func New(handler QueryHandler, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{handler: handler, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Post("/query", s.handleQuery)

	s.mux = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type queryRequest struct {
	Query string `json:"query"`
	// Timeout is the deadline in seconds. Absent means the server default;
	// zero or negative means an immediate placeholder reply.
	Timeout   *float64 `json:"timeout"`
	SessionID string   `json:"session_id"`
}

type queryResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	q := mayordomo.Query{Text: req.Query, SessionID: req.SessionID}
	if req.Timeout != nil {
		q.Deadline = time.Duration(*req.Timeout * float64(time.Second))
		if q.Deadline <= 0 {
			q.Deadline = -1
		}
	}

	reply := s.handler.HandleQuery(r.Context(), q)

	s.logger.Info("query handled",
		"request_id", middleware.GetReqID(r.Context()),
		"status", reply.Status,
		"task_id", reply.TaskID,
	)

	s.writeJSON(w, http.StatusOK, queryResponse{
		Response: reply.Response,
		Status:   reply.Status,
		TaskID:   reply.TaskID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"service": "mayordomo", "status": "running"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
