package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scagate/scagate/internal/db"
)

func testServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "scagate.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(d, 0, logger), d
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleRuns_Empty(t *testing.T) {
	s, _ := testServer(t)
	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No runs recorded yet") {
		t.Errorf("empty state missing:\n%s", rec.Body.String())
	}
}

func TestHandleRuns_ListsRuns(t *testing.T) {
	s, d := testServer(t)
	if _, err := d.InsertRun(&db.ScanRun{
		Repo: "acme/widgets", PR: 42, Command: "sca-agent scan .", Mode: "streaming",
		ExitCode: 0, ReportURL: "https://scan.example.com/r/1", Passed: true, DurationMs: 800,
	}); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/")
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	for _, want := range []string{"acme/widgets", "#42", "pass", "https://scan.example.com/r/1"} {
		if !strings.Contains(body, want) {
			t.Errorf("runs page missing %q", want)
		}
	}
}

func TestHandleRunDetail(t *testing.T) {
	s, d := testServer(t)
	id, err := d.InsertRun(&db.ScanRun{
		Repo: "acme/widgets", Command: "sca-agent scan .", Mode: "buffered",
		ExitCode: 2, Passed: false, URLSource: "", DurationMs: 300,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.LogEvent(id, "invoked", "sh -c sca-agent scan ."); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/runs/1")
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	for _, want := range []string{"fail", "exit 2", "not recovered", "invoked"} {
		if !strings.Contains(body, want) {
			t.Errorf("run page missing %q:\n%s", want, body)
		}
	}
}

func TestHandleRunDetail_NotFound(t *testing.T) {
	s, _ := testServer(t)
	if rec := get(t, s.Handler(), "/runs/999"); rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestHandleRunDetail_BadID(t *testing.T) {
	s, _ := testServer(t)
	if rec := get(t, s.Handler(), "/runs/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}
