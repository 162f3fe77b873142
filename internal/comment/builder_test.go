package comment

import (
	"strings"
	"testing"

	"github.com/scagate/scagate/internal/artifact"
)

func sampleSummary() *artifact.RunSummary {
	return &artifact.RunSummary{
		Repo:       "acme/widgets",
		PR:         42,
		Command:    "sca-agent scan .",
		Mode:       "streaming",
		ExitCode:   0,
		ReportURL:  "https://scan.example.com/r/1",
		URLSource:  "url-after-phrase",
		Passed:     true,
		DurationMs: 900,
	}
}

func TestBuild_PassedWithURL(t *testing.T) {
	body, err := Build(sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"## Dependency Scan",
		"✅ **Scan passed**",
		"[https://scan.example.com/r/1](https://scan.example.com/r/1)",
		"acme/widgets",
		"`sca-agent scan .`",
		Marker,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("comment missing %q:\n%s", want, body)
		}
	}
}

func TestBuild_FailedWithoutURL(t *testing.T) {
	s := sampleSummary()
	s.Passed = false
	s.ExitCode = 2
	s.Reason = "scanner exited 2"
	s.ReportURL = ""
	body, err := Build(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "❌ **Scan failed** — scanner exited 2") {
		t.Errorf("missing failure status:\n%s", body)
	}
	if !strings.Contains(body, "No report URL was recovered") {
		t.Errorf("missing absence line:\n%s", body)
	}
}

func TestBuild_WarnMode(t *testing.T) {
	s := sampleSummary()
	s.ExitCode = 2
	s.Reason = "scanner exited 2 (warn mode)"
	body, err := Build(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "⚠️ **Scan passed with warnings**") {
		t.Errorf("missing warn status:\n%s", body)
	}
}

func TestBuildFromTemplate(t *testing.T) {
	tmpl := `Scan {{status}} for {{repo}}.
{{#if report_url}}Report: {{report_url}}{{/if}}`
	body, err := BuildFromTemplate(tmpl, sampleSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "Scan passed for acme/widgets.") {
		t.Errorf("variables not expanded:\n%s", body)
	}
	if !strings.Contains(body, "Report: https://scan.example.com/r/1") {
		t.Errorf("conditional block dropped:\n%s", body)
	}
	if !strings.Contains(body, Marker) {
		t.Error("marker must be appended for upsert")
	}
}

func TestBuildFromTemplate_ConditionalSkipped(t *testing.T) {
	s := sampleSummary()
	s.ReportURL = ""
	body, err := BuildFromTemplate(`{{#if report_url}}Report: {{report_url}}{{/if}}done`, s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "Report:") {
		t.Errorf("empty variable must drop the block:\n%s", body)
	}
}

func TestRender_MissingVariable(t *testing.T) {
	if _, err := Render("hello {{nope}}", Vars{}); err == nil {
		t.Error("expected error for missing variable")
	}
}

func TestRender_DanglingClose(t *testing.T) {
	if _, err := Render("x {{/if}}", Vars{}); err == nil {
		t.Error("expected error for dangling close tag")
	}
}

func TestRender_UnclosedBlock(t *testing.T) {
	if _, err := Render("{{#if a}} x", Vars{"a": "1"}); err == nil {
		t.Error("expected error for unclosed block")
	}
}

func TestRender_NestedConditionals(t *testing.T) {
	out, err := Render("{{#if a}}A{{#if b}}B{{/if}}{{/if}}", Vars{"a": "1", "b": ""})
	if err != nil {
		t.Fatal(err)
	}
	if out != "A" {
		t.Errorf("got %q, want %q", out, "A")
	}
}
