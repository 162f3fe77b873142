package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scagate/scagate/internal/cienv"
)

// Output names exported to the CI job after every run.
const (
	OutputReportURL = "report-url"
	OutputExitCode  = "exit-code"
	OutputPassed    = "passed"
)

// OutputWriter exports a named output in the host CI platform's mechanism.
type OutputWriter interface {
	Set(name, value string) error
}

// NewOutputWriter picks the writer for the detected platform: the
// GITHUB_OUTPUT file on GitHub Actions, task.setvariable logging commands on
// Azure Pipelines, and a log-only fallback everywhere else. stdout is where
// Azure logging commands go; a nil logger falls back to slog.Default().
func NewOutputWriter(ctx cienv.Context, stdout io.Writer, logger *slog.Logger) OutputWriter {
	if logger == nil {
		logger = slog.Default()
	}
	switch ctx.Platform {
	case cienv.PlatformGitHub:
		if ctx.OutputsPath != "" {
			return &githubOutputs{path: ctx.OutputsPath}
		}
		return &logOutputs{logger: logger}
	case cienv.PlatformAzure:
		return &azureOutputs{w: stdout}
	default:
		return &logOutputs{logger: logger}
	}
}

// githubOutputs appends name=value lines to the GITHUB_OUTPUT file.
type githubOutputs struct {
	path string
}

func (g *githubOutputs) Set(name, value string) error {
	f, err := os.OpenFile(g.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open outputs file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		return fmt.Errorf("append output %s: %w", name, err)
	}
	return nil
}

// azureOutputs emits ##vso logging commands, which the agent parses off
// stdout.
type azureOutputs struct {
	w io.Writer
}

func (a *azureOutputs) Set(name, value string) error {
	_, err := fmt.Fprintf(a.w, "##vso[task.setvariable variable=%s;isOutput=true]%s\n", name, value)
	return err
}

// logOutputs is the fallback outside CI: outputs land in the diagnostic log.
type logOutputs struct {
	logger *slog.Logger
}

func (l *logOutputs) Set(name, value string) error {
	l.logger.Info("output", "name", name, "value", value)
	return nil
}
