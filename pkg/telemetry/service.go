package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service serves the generator's snapshots over HTTP.
type Service struct {
	generator *Generator
	router    chi.Router
}

// NewService wires the HTTP surface over a generator.
func NewService(generator *Generator) *Service {
	s := &Service{generator: generator}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/weather", s.handleWeather)
	r.Get("/api/lifts", s.handleLifts)
	r.Get("/api/safety", s.handleSafety)
	r.Get("/api/slopes", s.handleSlopes)
	r.Get("/api/state", s.handleState)
	r.Get("/health", s.handleHealth)
	s.router = r

	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Service) handleWeather(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.generator.Weather())
}

func (s *Service) handleLifts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.generator.Lifts())
}

func (s *Service) handleSafety(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.generator.Safety())
}

func (s *Service) handleSlopes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.generator.Slopes())
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.generator.State())
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "healthy", "service": "data-generator"})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding telemetry response", "error", err)
	}
}

var _ http.Handler = (*Service)(nil)
