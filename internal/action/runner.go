// Package action sequences one full gate run: invoke the scanner, extract
// the report URL, publish artifacts and named outputs, comment on the pull
// request, record history, and apply the pass/fail policy.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/scagate/scagate/internal/artifact"
	"github.com/scagate/scagate/internal/cienv"
	"github.com/scagate/scagate/internal/comment"
	"github.com/scagate/scagate/internal/config"
	"github.com/scagate/scagate/internal/db"
	"github.com/scagate/scagate/internal/extract"
	"github.com/scagate/scagate/internal/scan"
)

// Invoker runs the external scanner. Interface for testing.
type Invoker interface {
	Run(ctx context.Context, command string) (*scan.Capture, error)
}

// Commenter posts or updates the PR comment. Interface for testing.
type Commenter interface {
	UpsertComment(repo string, pr int, marker, body string) (created bool, err error)
}

// Extractor recovers the report URL from captured output.
type Extractor interface {
	Extract(text string) (extract.Result, bool)
}

// History records run rows and lifecycle events.
type History interface {
	InsertRun(r *db.ScanRun) (int, error)
	LogEvent(runID int, event, detail string) error
}

// Runner wires the collaborators for one run. Nil optional collaborators
// (commenter, history) disable that step.
type Runner struct {
	Config    *config.Config
	CI        cienv.Context
	Invoker   Invoker
	Extractor Extractor
	Outputs   artifact.OutputWriter
	Commenter Commenter
	History   History
	Logger    *slog.Logger
}

// Result is the outcome of a full gate run.
type Result struct {
	Summary *artifact.RunSummary
	Verdict scan.Verdict
}

// Run executes the pipeline. Only scanner launch failures return an error;
// everything downstream of a successful launch is either the verdict or a
// logged, non-fatal degradation.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	capt, err := r.Invoker.Run(ctx, r.Config.Command)
	if err != nil {
		return nil, fmt.Errorf("invoke scanner: %w", err)
	}

	// Extraction runs even for failed scans: the report line may have been
	// printed before the failure, on either stream.
	extracted, found := r.Extractor.Extract(capt.Combined)
	verdict := scan.Evaluate(capt, scan.OnFailure(r.Config.OnFailure))

	summary := &artifact.RunSummary{
		Repo:       r.CI.Repo,
		PR:         r.CI.PR,
		Command:    r.Config.Command,
		Mode:       r.Config.Mode,
		ExitCode:   capt.ExitCode,
		Truncated:  capt.Truncated,
		Passed:     verdict.Passed,
		Reason:     verdict.Reason,
		DurationMs: int(capt.Duration.Milliseconds()),
		StartedAt:  start.UTC(),
	}
	if found {
		summary.ReportURL = extracted.URL
		summary.URLSource = string(extracted.Source)
	}

	if r.Config.SummaryFile != "" {
		if err := artifact.WriteSummary(r.Config.SummaryFile, summary); err != nil {
			logger.Warn("failed to write run summary", "path", r.Config.SummaryFile, "error", err)
		}
	}

	r.exportOutputs(summary, logger)
	r.postComment(summary, logger)
	r.record(summary, logger)

	return &Result{Summary: summary, Verdict: verdict}, nil
}

// exportOutputs publishes the named CI outputs. Best-effort.
func (r *Runner) exportOutputs(s *artifact.RunSummary, logger *slog.Logger) {
	if r.Outputs == nil {
		return
	}
	outputs := []struct{ name, value string }{
		{artifact.OutputReportURL, s.ReportURL},
		{artifact.OutputExitCode, strconv.Itoa(s.ExitCode)},
		{artifact.OutputPassed, strconv.FormatBool(s.Passed)},
	}
	for _, o := range outputs {
		if err := r.Outputs.Set(o.name, o.value); err != nil {
			logger.Warn("failed to export output", "name", o.name, "error", err)
		}
	}
}

// postComment upserts the PR comment. Best-effort: a comment failure never
// masks the scan result.
func (r *Runner) postComment(s *artifact.RunSummary, logger *slog.Logger) {
	if r.Commenter == nil || !r.Config.Comment.Enabled {
		return
	}
	if !r.CI.IsPR() || r.CI.Repo == "" {
		logger.Debug("not a pull-request build, skipping comment")
		return
	}

	body, err := BuildBody(r.Config, s)
	if err != nil {
		logger.Warn("failed to build comment body", "error", err)
		return
	}
	created, err := r.Commenter.UpsertComment(r.CI.Repo, r.CI.PR, comment.Marker, body)
	if err != nil {
		logger.Warn("failed to post PR comment", "repo", r.CI.Repo, "pr", r.CI.PR, "error", err)
		return
	}
	logger.Info("posted PR comment", "repo", r.CI.Repo, "pr", r.CI.PR, "created", created)
}

// record writes the run to the history database. Best-effort.
func (r *Runner) record(s *artifact.RunSummary, logger *slog.Logger) {
	if r.History == nil || !r.Config.History.Enabled {
		return
	}
	id, err := r.History.InsertRun(&db.ScanRun{
		Repo:       s.Repo,
		PR:         s.PR,
		Command:    s.Command,
		Mode:       s.Mode,
		ExitCode:   s.ExitCode,
		ReportURL:  s.ReportURL,
		URLSource:  s.URLSource,
		Truncated:  s.Truncated,
		Passed:     s.Passed,
		DurationMs: s.DurationMs,
	})
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	detail := s.URLSource
	if s.ReportURL == "" {
		detail = "no url recovered"
	}
	if err := r.History.LogEvent(id, "completed", detail); err != nil {
		logger.Warn("failed to record event", "error", err)
	}
}

// BuildBody renders the PR comment body, honoring a project-level template
// override.
func BuildBody(cfg *config.Config, s *artifact.RunSummary) (string, error) {
	if cfg.Comment.Template != "" {
		tmpl, err := comment.LoadTemplate(cfg.Comment.Template)
		if err != nil {
			return "", err
		}
		return comment.BuildFromTemplate(tmpl, s)
	}
	return comment.Build(s)
}
