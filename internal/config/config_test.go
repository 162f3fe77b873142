package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `
command: "sca-agent scan --project widgets"
mode: streaming
on_failure: warn
result_file: artifacts/sca-output.txt
sidecar_file: artifacts/scan-report.json
comment:
  enabled: true
  template: .scagate/comment.md
history:
  enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Command != "sca-agent scan --project widgets" {
		t.Errorf("command = %q", cfg.Command)
	}
	if cfg.Mode != "streaming" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.OnFailure != "warn" {
		t.Errorf("on_failure = %q", cfg.OnFailure)
	}
	if cfg.ResultFile != "artifacts/sca-output.txt" {
		t.Errorf("result_file = %q", cfg.ResultFile)
	}
	if !cfg.Comment.Enabled {
		t.Error("comment.enabled should be true")
	}
	if cfg.Comment.Template != ".scagate/comment.md" {
		t.Errorf("comment.template = %q", cfg.Comment.Template)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("valid config should pass validation: %v", errs)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, `command: "sca-agent scan ."`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OnFailure != "fail" {
		t.Errorf("default on_failure = %q, want fail", cfg.OnFailure)
	}
	if cfg.ResultFile != "sca-output.txt" {
		t.Errorf("default result_file = %q", cfg.ResultFile)
	}
	if cfg.SidecarFile != "scan-report.json" {
		t.Errorf("default sidecar_file = %q", cfg.SidecarFile)
	}
	if cfg.SummaryFile != "scagate-run.json" {
		t.Errorf("default summary_file = %q", cfg.SummaryFile)
	}
	if cfg.Mode != "" {
		t.Errorf("mode should default to platform choice, got %q", cfg.Mode)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "command: [unclosed")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Command = "from-file"
	cfg.ApplyEnv(map[string]string{
		"SCAGATE_COMMAND":    "from-env",
		"SCAGATE_MODE":       "buffered",
		"SCAGATE_ON_FAILURE": "warn",
		"UNRELATED":          "ignored",
	})
	if cfg.Command != "from-env" {
		t.Errorf("env must win over file, got %q", cfg.Command)
	}
	if cfg.Mode != "buffered" || cfg.OnFailure != "warn" {
		t.Errorf("env overrides not applied: mode=%q on_failure=%q", cfg.Mode, cfg.OnFailure)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.Command = "from-file"
	cfg.Mode = "buffered"
	cfg.ApplyOverrides(Overrides{Command: "from-flag"})
	if cfg.Command != "from-flag" {
		t.Errorf("flag must win, got %q", cfg.Command)
	}
	if cfg.Mode != "buffered" {
		t.Errorf("empty override must not clobber, got %q", cfg.Mode)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"missing command", func(c *Config) { c.Command = "" }, "command"},
		{"bad mode", func(c *Config) { c.Mode = "overlapped" }, "mode"},
		{"bad policy", func(c *Config) { c.OnFailure = "explode" }, "on_failure"},
		{"negative limit", func(c *Config) { c.LimitBytes = -1 }, "limit_bytes"},
		{"missing result file", func(c *Config) { c.ResultFile = "" }, "result_file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Command = "sca-agent scan ."
			tc.mut(cfg)
			errs := Validate(cfg)
			if len(errs) == 0 {
				t.Fatal("expected validation error")
			}
			found := false
			for _, e := range errs {
				if e.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tc.field, errs)
			}
		})
	}
}
