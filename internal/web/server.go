// Package web serves a read-only local dashboard over the run-history
// database.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/scagate/scagate/internal/db"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"passClass": func(passed bool) string {
		if passed {
			return "result-pass"
		}
		return "result-fail"
	},
	"percent": func(rate float64) string {
		return fmt.Sprintf("%.0f%%", rate*100)
	},
	"relTime": relTime,
}

// Server is the read-only dashboard server.
type Server struct {
	db     *db.DB
	port   int
	logger *slog.Logger

	runsTmpl *template.Template
	runTmpl  *template.Template
}

// NewServer creates a Server with parsed templates. A nil logger falls back
// to slog.Default().
func NewServer(database *db.DB, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		db:       database,
		port:     port,
		logger:   logger,
		runsTmpl: mustParseTmpl("base.html", "runs.html"),
		runTmpl:  mustParseTmpl("base.html", "run.html"),
	}
}

func mustParseTmpl(names ...string) *template.Template {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = "templates/" + n
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, patterns...))
}

// Handler returns the router, exported separately so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleRunDetail)
	return mux
}

// Start serves until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.logger.Info("dashboard listening", "addr", "http://"+addr)
	return http.ListenAndServe(addr, s.Handler())
}

// relTime renders a sqlite UTC timestamp as a human-relative string.
func relTime(ts string) string {
	t, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		return ts
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
