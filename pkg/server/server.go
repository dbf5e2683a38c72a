// Package server exposes the HTTP API: article browsing, on-demand
// summarization, person accounts, and admin-triggered background tasks.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"newsdesk/pkg/domain"
	"newsdesk/pkg/summarize"
)

// Repository is the persistence surface the handlers need.
type Repository interface {
	ArticleByID(ctx context.Context, id int64) (*domain.Article, error)
	IDByURL(ctx context.Context, url string) (int64, error)
	ListArticles(ctx context.Context, search string, limit, offset uint64) ([]domain.Article, error)
	RelatedByKeywords(ctx context.Context, articleID int64, keywords []string, limit uint64) ([]domain.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
	ArticleStats(ctx context.Context, id int64) (views, saves int, err error)

	ToggleSaved(ctx context.Context, articleID, personID int64) (bool, error)
	MarkViewed(ctx context.Context, articleID, personID int64) error
	MarkShared(ctx context.Context, articleID, personID int64) error

	CreatePerson(ctx context.Context, email, firstName, lastName, password string) (*domain.Person, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Person, error)
	PersonByID(ctx context.Context, id int64) (*domain.Person, error)
	UpdatePersonSettings(ctx context.Context, id int64, settings, interests map[string]string) error
}

// Summarizer produces a summary for an arbitrary URL.
type Summarizer interface {
	Fetch(ctx context.Context, url string, cfg summarize.Config) (*summarize.Result, error)
}

// Jobs triggers the background tasks. Both report false when a run was
// already in flight.
type Jobs interface {
	RunPull(ctx context.Context) bool
	RunSourceUpdate(ctx context.Context) bool
}

// Ingestor admits a single manually submitted candidate into the same
// enrichment and persistence path the batch pipeline uses.
type Ingestor interface {
	IngestOne(ctx context.Context, h domain.Headline) error
}

// Server holds the handler dependencies.
type Server struct {
	repo        Repository
	summarizer  Summarizer
	ingestor    Ingestor
	jobs        Jobs
	adminSecret string
	logger      *slog.Logger
}

// New builds the Server. An empty adminSecret disables the admin
// endpoints entirely.
func New(repo Repository, summarizer Summarizer, ingestor Ingestor, jobs Jobs, adminSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		repo:        repo,
		summarizer:  summarizer,
		ingestor:    ingestor,
		jobs:        jobs,
		adminSecret: adminSecret,
		logger:      logger,
	}
}

// Router wires all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/articles", s.handleListArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.requireAdmin(s.handleCreateArticle)).Methods(http.MethodPost)
	api.HandleFunc("/articles/lookup", s.requireAdmin(s.handleLookupArticle)).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", s.handleGetArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", s.requireAdmin(s.handleDeleteArticle)).Methods(http.MethodDelete)
	api.HandleFunc("/articles/{id:[0-9]+}/summary", s.handleArticleSummary).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}/save", s.handleToggleSaved).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}/view", s.handleMarkViewed).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id:[0-9]+}/share", s.handleMarkShared).Methods(http.MethodPost)

	api.HandleFunc("/summarize", s.handleSummarize).Methods(http.MethodGet)

	api.HandleFunc("/persons", s.handleCreatePerson).Methods(http.MethodPost)
	api.HandleFunc("/persons/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/persons/{id:[0-9]+}/settings", s.handleUpdateSettings).Methods(http.MethodPut)

	api.HandleFunc("/tasks/pull-articles", s.requireAdmin(s.handlePullArticles)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/update-sources", s.requireAdmin(s.handleUpdateSources)).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}

// requireAdmin guards an endpoint with the X-Admin-Secret header,
// compared in constant time.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminSecret == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled")
			return
		}
		given := r.Header.Get("X-Admin-Secret")
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.adminSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin secret")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}
