package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scagate/scagate/internal/cienv"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	if err := WriteAtomic(path, []byte("scanner output\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "scanner output\n" {
		t.Errorf("unexpected content: %q", data)
	}

	// Overwrites, never appends.
	if err := WriteAtomic(path, []byte("second run\n")); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second run\n" {
		t.Errorf("expected overwrite, got %q", data)
	}

	// No stray temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFileName)
	want := &RunSummary{
		Repo:       "acme/widgets",
		PR:         42,
		Command:    "sca-agent scan .",
		Mode:       "streaming",
		ExitCode:   0,
		ReportURL:  "https://scan.example.com/r/1",
		URLSource:  "url-after-phrase",
		Passed:     true,
		DurationMs: 1200,
		StartedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	if err := WriteSummary(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestGitHubOutputs_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gh-output")
	ctx := cienv.Context{Platform: cienv.PlatformGitHub, OutputsPath: path}
	w := NewOutputWriter(ctx, nil, nil)

	if err := w.Set(OutputReportURL, "https://scan.example.com/r/1"); err != nil {
		t.Fatal(err)
	}
	if err := w.Set(OutputPassed, "true"); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	want := "report-url=https://scan.example.com/r/1\npassed=true\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestAzureOutputs_LoggingCommands(t *testing.T) {
	var out strings.Builder
	ctx := cienv.Context{Platform: cienv.PlatformAzure}
	w := NewOutputWriter(ctx, &out, nil)

	if err := w.Set(OutputExitCode, "2"); err != nil {
		t.Fatal(err)
	}
	want := "##vso[task.setvariable variable=exit-code;isOutput=true]2\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestOutputs_FallbackNeverErrors(t *testing.T) {
	w := NewOutputWriter(cienv.Context{Platform: cienv.PlatformNone}, nil, nil)
	if err := w.Set(OutputPassed, "false"); err != nil {
		t.Errorf("fallback writer must not error: %v", err)
	}
}
