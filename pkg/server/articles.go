package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"newsdesk/pkg/domain"
	"newsdesk/pkg/extract"
	"newsdesk/pkg/ingest"
	"newsdesk/pkg/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	relatedLimit    = 5
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.ParseUint(q.Get("page"), 10, 32)
	if page == 0 {
		page = 1
	}
	size, _ := strconv.ParseUint(q.Get("page_size"), 10, 32)
	if size == 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	articles, err := s.repo.ListArticles(r.Context(), q.Get("search"), size, (page-1)*size)
	if err != nil {
		s.logger.Error("article listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":      page,
		"page_size": size,
		"articles":  articles,
	})
}

type createArticleRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Authors     string `json:"authors"`
	PublishTime string `json:"publish_time"`
	ImageURL    string `json:"image_url"`
}

// handleCreateArticle admits a manually submitted story. The URL goes
// through the same enrichment and persistence path as batch ingestion.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}

	err := s.ingestor.IngestOne(r.Context(), domain.Headline{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Authors,
		PublishedAt: req.PublishTime,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "article already exists")
		case errors.Is(err, ingest.ErrRejected):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, extract.ErrFetchFailed):
			writeError(w, http.StatusBadGateway, "could not fetch the page")
		default:
			s.logger.Error("manual article creation failed", "url", req.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "creation failed")
		}
		return
	}

	id, err := s.repo.IDByURL(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("created article lookup failed", "url", req.URL, "error", err)
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"identifier": id, "url": req.URL})
}

// handleLookupArticle resolves a source URL to the stored identifier.
func (s *Server) handleLookupArticle(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if strings.TrimSpace(url) == "" {
		writeError(w, http.StatusBadRequest, "url parameter required")
		return
	}
	id, err := s.repo.IDByURL(r.Context(), url)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no article with that url")
			return
		}
		s.logger.Error("article url lookup failed", "url", url, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identifier": id, "url": url})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	article, err := s.repo.ArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleArticleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	article, err := s.repo.ArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	related, err := s.repo.RelatedByKeywords(r.Context(), id, article.Keywords, relatedLimit)
	if err != nil {
		s.logger.Warn("related lookup failed", "id", id, "error", err)
		related = nil
	}
	if related == nil {
		related = []domain.Article{}
	}

	views, saves, err := s.repo.ArticleStats(r.Context(), id)
	if err != nil {
		s.logger.Warn("stats lookup failed", "id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identifier": article.Identifier,
		"title":      article.Title,
		"summary":    article.Summary,
		"keywords":   article.Keywords,
		"related":    related,
		"views":      views,
		"saves":      saves,
	})
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	if err := s.repo.DeleteArticle(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type relationRequest struct {
	PersonID int64 `json:"person_id"`
}

func (s *Server) relationIDs(w http.ResponseWriter, r *http.Request) (articleID, personID int64, ok bool) {
	articleID, ok = pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return 0, 0, false
	}
	var req relationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PersonID == 0 {
		writeError(w, http.StatusBadRequest, "person_id required")
		return 0, 0, false
	}
	return articleID, req.PersonID, true
}

func (s *Server) handleToggleSaved(w http.ResponseWriter, r *http.Request) {
	articleID, personID, ok := s.relationIDs(w, r)
	if !ok {
		return
	}
	saved, err := s.repo.ToggleSaved(r.Context(), articleID, personID)
	if err != nil {
		s.logger.Error("save toggle failed", "article", articleID, "person", personID, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	articleID, personID, ok := s.relationIDs(w, r)
	if !ok {
		return
	}
	if err := s.repo.MarkViewed(r.Context(), articleID, personID); err != nil {
		s.logger.Error("view mark failed", "article", articleID, "person", personID, "error", err)
		writeError(w, http.StatusInternalServerError, "view failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkShared(w http.ResponseWriter, r *http.Request) {
	articleID, personID, ok := s.relationIDs(w, r)
	if !ok {
		return
	}
	if err := s.repo.MarkShared(r.Context(), articleID, personID); err != nil {
		s.logger.Error("share mark failed", "article", articleID, "person", personID, "error", err)
		writeError(w, http.StatusInternalServerError, "share failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
