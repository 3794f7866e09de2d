package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ainews/internal/domain"
	"ainews/internal/ports"
)

//go:embed templates
var templateFS embed.FS

// Updater is the slice of the orchestrator the HTTP surface needs.
type Updater interface {
	UpdateSource(ctx context.Context, trigger string) (domain.SourceReport, bool)
	UpdateAll(ctx context.Context) domain.Report
}

// Server exposes the update triggers and the stored-article listing.
type Server struct {
	updater Updater
	store   ports.Store
	logger  *slog.Logger
	tmpl    *template.Template
}

// New builds the HTTP surface over the orchestrator and the datastore.
func New(updater Updater, store ports.Store, logger *slog.Logger) *Server {
	return &Server{
		updater: updater,
		store:   store,
		logger:  logger,
		tmpl:    template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)

	mux.Get("/", s.handleHome)
	mux.Get("/healthcheck", s.handleHealthcheck)

	mux.Post("/update/all", s.handleUpdateAll)
	mux.Post("/update/{trigger}", s.handleUpdateSource)

	return mux
}

type updateResponse struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Updated bool   `json:"updated"`
}

func (s *Server) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	trigger := chi.URLParam(r, "trigger")

	report, skipped := s.updater.UpdateSource(r.Context(), trigger)
	switch {
	case skipped:
		s.writeJSON(w, http.StatusCreated, updateResponse{
			Message: "articles for today already stored",
			Source:  trigger,
		})
	case report.Err != nil:
		s.writeJSON(w, http.StatusInternalServerError, updateResponse{
			Message: fmt.Sprintf("update failed: %v", report.Err),
			Source:  trigger,
		})
	case report.Added == 0:
		s.writeJSON(w, http.StatusCreated, updateResponse{
			Message: "no new items found",
			Source:  trigger,
		})
	default:
		s.writeJSON(w, http.StatusOK, updateResponse{
			Message: fmt.Sprintf("added %d items", report.Added),
			Source:  trigger,
			Updated: true,
		})
	}
}

type updateAllResponse struct {
	Message        string   `json:"message"`
	UpdatedSources []string `json:"updated_sources"`
	SkippedSources []string `json:"skipped_sources"`
	FailedSources  []string `json:"failed_sources,omitempty"`
	Updated        bool     `json:"updated"`
}

func (s *Server) handleUpdateAll(w http.ResponseWriter, r *http.Request) {
	report := s.updater.UpdateAll(r.Context())

	resp := updateAllResponse{
		UpdatedSources: []string{},
		SkippedSources: report.Skipped,
	}
	if resp.SkippedSources == nil {
		resp.SkippedSources = []string{}
	}
	for _, src := range report.Updated {
		if src.Err != nil {
			resp.FailedSources = append(resp.FailedSources, src.Trigger)
			continue
		}
		resp.UpdatedSources = append(resp.UpdatedSources, src.Trigger)
	}

	if len(report.Updated) == 0 {
		resp.Message = "all sources already updated for the current date"
		s.writeJSON(w, http.StatusCreated, resp)
		return
	}

	resp.Updated = true
	resp.Message = fmt.Sprintf("update completed, %d articles added", report.TotalAdded())
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Query(r.Context(), domain.ArticlesTable, nil)
	if err != nil {
		s.logger.Error("article listing failed", "error", err)
		rows = nil
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		articles = append(articles, domain.ArticleFromRecord(row))
	}
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Date != articles[j].Date {
			return articles[i].Date > articles[j].Date
		}
		return articles[i].Source < articles[j].Source
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, map[string]any{"Articles": articles}); err != nil {
		s.logger.Error("template render failed", "error", err)
	}
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}
