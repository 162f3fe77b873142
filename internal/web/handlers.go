package web

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/scagate/scagate/internal/db"
)

// RunsPage is the data for the runs list view.
type RunsPage struct {
	Repo  string
	Runs  []db.ScanRun
	Stats *db.Stats
}

// RunPage is the data for the run detail view.
type RunPage struct {
	Run    *db.ScanRun
	Events []db.ActionEvent
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")

	runs, err := s.db.Runs(repo, 0, 50)
	if err != nil {
		s.logger.Error("query runs", "error", err)
		http.Error(w, "query runs failed", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats(repo)
	if err != nil {
		s.logger.Error("query stats", "error", err)
		http.Error(w, "query stats failed", http.StatusInternalServerError)
		return
	}

	s.execTemplate(w, s.runsTmpl, &RunsPage{Repo: repo, Runs: runs, Stats: stats})
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad run id", http.StatusBadRequest)
		return
	}

	run, err := s.db.GetRun(id)
	if err != nil {
		s.logger.Error("query run", "id", id, "error", err)
		http.Error(w, "query run failed", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}

	events, err := s.db.Events(id)
	if err != nil {
		s.logger.Error("query events", "id", id, "error", err)
		http.Error(w, "query events failed", http.StatusInternalServerError)
		return
	}

	s.execTemplate(w, s.runTmpl, &RunPage{Run: run, Events: events})
}

func (s *Server) execTemplate(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("render template", "error", err)
	}
}
