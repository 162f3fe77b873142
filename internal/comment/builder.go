package comment

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/scagate/scagate/internal/artifact"
)

// Marker is the hidden HTML comment that identifies scagate's PR comment so
// reruns update it in place.
const Marker = "<!-- scagate -->"

// Build renders the default pull-request comment for a run summary.
func Build(s *artifact.RunSummary) (string, error) {
	var buf strings.Builder
	md := markdown.NewMarkdown(&buf)

	md.H2("Dependency Scan")
	md.PlainText("")
	md.PlainText(statusLine(s))
	md.PlainText("")

	if s.ReportURL != "" {
		md.PlainTextf("Full report: %s", markdown.Link(s.ReportURL, s.ReportURL))
	} else {
		md.PlainText("No report URL was recovered from the scanner output.")
	}
	md.PlainText("")

	rows := [][]string{
		{"Command", fmt.Sprintf("`%s`", s.Command)},
		{"Exit code", fmt.Sprintf("%d", s.ExitCode)},
		{"Capture mode", s.Mode},
		{"Duration", (time.Duration(s.DurationMs) * time.Millisecond).String()},
	}
	if s.Repo != "" {
		rows = append([][]string{{"Repository", s.Repo}}, rows...)
	}
	if s.PR > 0 {
		rows = append(rows, []string{"Pull request", fmt.Sprintf("#%d", s.PR)})
	}
	if s.Truncated {
		rows = append(rows, []string{"Output", "truncated at capture ceiling"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})

	md.PlainText("")
	md.PlainText(Marker)

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("build comment markdown: %w", err)
	}
	return buf.String(), nil
}

// BuildFromTemplate renders a custom comment template with the run's
// variables. The marker is appended when the template does not already
// carry it, so upsert keeps working with user templates.
func BuildFromTemplate(tmpl string, s *artifact.RunSummary) (string, error) {
	body, err := Render(tmpl, TemplateVars(s))
	if err != nil {
		return "", err
	}
	if !strings.Contains(body, Marker) {
		body = strings.TrimRight(body, "\n") + "\n\n" + Marker + "\n"
	}
	return body, nil
}

// TemplateVars exposes a run summary as template variables.
func TemplateVars(s *artifact.RunSummary) Vars {
	status := "failed"
	if s.Passed {
		status = "passed"
	}
	return Vars{
		"status":     status,
		"reason":     s.Reason,
		"report_url": s.ReportURL,
		"url_source": s.URLSource,
		"repo":       s.Repo,
		"pr":         fmt.Sprintf("%d", s.PR),
		"command":    s.Command,
		"exit_code":  fmt.Sprintf("%d", s.ExitCode),
		"duration":   (time.Duration(s.DurationMs) * time.Millisecond).String(),
		"marker":     Marker,
	}
}

func statusLine(s *artifact.RunSummary) string {
	if s.Passed {
		if s.ExitCode != 0 {
			return fmt.Sprintf("⚠️ **Scan passed with warnings** — %s", s.Reason)
		}
		return "✅ **Scan passed**"
	}
	return fmt.Sprintf("❌ **Scan failed** — %s", s.Reason)
}
