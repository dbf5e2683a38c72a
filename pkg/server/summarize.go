package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"newsdesk/pkg/extract"
	"newsdesk/pkg/summarize"
)

// handleSummarize runs the extraction and summarization pipeline on an
// arbitrary URL without persisting anything.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target := q.Get("url")
	if parsed, err := url.Parse(target); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		writeError(w, http.StatusBadRequest, "url parameter must be absolute")
		return
	}

	cfg, err := summarizeConfig(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.summarizer.Fetch(r.Context(), target, cfg)
	if err != nil {
		switch {
		case errors.Is(err, summarize.ErrInvalidConfig):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, extract.ErrFetchFailed):
			writeError(w, http.StatusBadGateway, "could not fetch the page")
		default:
			s.logger.Error("summarization failed", "url", target, "error", err)
			writeError(w, http.StatusInternalServerError, "summarization failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// summarizeConfig builds a summarization Config from query parameters,
// starting from the defaults.
func summarizeConfig(q url.Values) (summarize.Config, error) {
	cfg := summarize.DefaultConfig()

	if v := q.Get("num_keywords"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.New("num_keywords must be an integer")
		}
		cfg.NumKeywords = n
	}
	if v := q.Get("ratio"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.New("ratio must be a number")
		}
		cfg.ResultRatio = f
	}
	if v := q.Get("min_words"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.New("min_words must be an integer")
		}
		cfg.MinWordCount = n
	}
	if v := q.Get("max_words"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.New("max_words must be an integer")
		}
		cfg.MaxWordCount = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
