// Package server exposes a live document session over HTTP for previewing.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/reflow"
	"github.com/gompdf/folio/internal/render"
)

// Source is the live document being previewed
type Source interface {
	Plan() *pagination.Plan
	Pages() []render.PageView
	PDF(ctx context.Context) ([]byte, error)
	Stats() reflow.Stats
}

// Server is the preview HTTP server.
type Server struct {
	router chi.Router
	source Source
	log    *slog.Logger
}

// New creates and configures the preview server.
func New(source Source, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{source: source, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/plan", s.handlePlan)
	r.Get("/pages/{index}", s.handlePage)
	r.Get("/stats", s.handleStats)
	r.Get("/preview.pdf", s.handlePDF)

	s.router = r
}

type planResponse struct {
	*pagination.Plan
	Pages []pageResponse `json:"pages"`
}

type pageResponse struct {
	Key string `json:"key"`
	render.PageView
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	resp := planResponse{Plan: s.source.Plan()}
	for _, v := range s.source.Pages() {
		resp.Pages = append(resp.Pages, pageResponse{Key: v.Key(), PageView: v})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "page index must be a number", http.StatusBadRequest)
		return
	}
	pages := s.source.Pages()
	if i < 1 || i > len(pages) {
		jsonError(w, "page out of range", http.StatusNotFound)
		return
	}
	v := pages[i-1]
	writeJSON(w, http.StatusOK, pageResponse{Key: v.Key(), PageView: v})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Stats())
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	data, err := s.source.PDF(ctx)
	if err != nil {
		s.log.Error("server: render failed", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
