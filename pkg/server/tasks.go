package server

import (
	"context"
	"net/http"
)

// The task endpoints acknowledge immediately; the work itself runs in
// the background with the same single-flight guard the cron jobs use.

func (s *Server) handlePullArticles(w http.ResponseWriter, _ *http.Request) {
	go func() {
		if !s.jobs.RunPull(context.Background()) {
			s.logger.Info("manual pull request ignored, run already in flight")
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "task": "pull-articles"})
}

func (s *Server) handleUpdateSources(w http.ResponseWriter, _ *http.Request) {
	go func() {
		if !s.jobs.RunSourceUpdate(context.Background()) {
			s.logger.Info("manual source update ignored, run already in flight")
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "task": "update-sources"})
}
