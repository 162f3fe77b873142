package extract

import (
	"log/slog"
	"regexp"
	"strings"
)

// Source identifies where a report URL was recovered from.
type Source string

const (
	// SourceSidecar means the URL came from the sidecar JSON file.
	SourceSidecar Source = "sidecar"
	// SourceNone is the zero source for a run that recovered nothing.
	SourceNone Source = ""
)

// Result holds a validated report URL and the source that produced it.
type Result struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

// reportPattern pairs a compiled matcher with the validator applied to its
// capture. Patterns are tried strictly in order; the first pattern whose
// capture survives validation wins, even if a later pattern would also match.
type reportPattern struct {
	name     Source
	re       *regexp.Regexp
	validate func(string) (string, bool)
}

// The scanner's console format is not contractually stable, so extraction is
// layered: strict URL-anchored match first, progressively looser captures
// after. Pattern "any-token" is behaviorally redundant with "url-after-phrase"
// once validation runs, but the ordering changes when the sidecar fallback is
// reached, so it stays.
var reportPatterns = []reportPattern{
	{
		name:     "url-after-phrase",
		re:       regexp.MustCompile(`(?i)full\s+report\s+details\s+(https?://\S+)`),
		validate: validateReportURL,
	},
	{
		name:     "url-after-colon",
		re:       regexp.MustCompile(`(?i)full\s+report\s+details\s*:?\s*(https?://\S+)`),
		validate: validateReportURL,
	},
	{
		name:     "any-token",
		re:       regexp.MustCompile(`(?i)full\s+report\s+details\s+(\S+)`),
		validate: validateReportURL,
	},
	{
		name:     "line-tail",
		re:       regexp.MustCompile(`(?i)full\s+report\s+details\s*:?\s*([^\r\n]+)`),
		validate: validateReportURL,
	},
}

// phraseRe detects the anchor phrase alone, for diagnostics only.
var phraseRe = regexp.MustCompile(`(?i)full\s+report\s+details`)

// Extractor recovers the report URL from captured scanner output, falling
// back to the sidecar JSON file when the console text yields nothing.
type Extractor struct {
	sidecarPath string
	logger      *slog.Logger
}

// New creates an Extractor. sidecarPath may be empty to disable the sidecar
// fallback. A nil logger falls back to slog.Default().
func New(sidecarPath string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{sidecarPath: sidecarPath, logger: logger}
}

// Extract scans text for the report URL. Not finding one is a normal outcome
// (the scanner's format drifts), signalled by ok=false — never an error.
// Calling Extract twice on the same input yields the same result.
func (e *Extractor) Extract(text string) (Result, bool) {
	if url, source, ok := e.fromText(text); ok {
		e.logger.Info("report URL recovered from scan output", "source", string(source), "url", url)
		return Result{URL: url, Source: source}, true
	}

	if url, ok := e.fromSidecar(); ok {
		e.logger.Info("report URL recovered from sidecar", "path", e.sidecarPath, "url", url)
		return Result{URL: url, Source: SourceSidecar}, true
	}

	e.logger.Info("no report URL recovered")
	return Result{}, false
}

// fromText runs the ordered pattern list over the captured output. Empty
// input short-circuits: no pattern work is performed.
func (e *Extractor) fromText(text string) (string, Source, bool) {
	if text == "" {
		e.logger.Debug("scan output empty, skipping pattern match")
		return "", SourceNone, false
	}

	if !phraseRe.MatchString(text) {
		e.logger.Debug("report phrase not present in scan output")
		return "", SourceNone, false
	}
	e.logger.Debug("report phrase present, trying patterns")

	for _, p := range reportPatterns {
		matches := p.re.FindAllStringSubmatch(text, -1)
		if matches == nil {
			e.logger.Debug("pattern did not match", "pattern", string(p.name))
			continue
		}
		for _, m := range matches {
			url, ok := p.validate(m[1])
			if !ok {
				e.logger.Debug("pattern matched but capture failed validation",
					"pattern", string(p.name), "capture", m[1])
				continue
			}
			e.logger.Debug("pattern matched", "pattern", string(p.name))
			return url, p.name, true
		}
	}

	return "", SourceNone, false
}

// validateReportURL trims the capture and requires an absolute http(s) URL.
// The scheme check is case-sensitive even though the patterns are not: a
// match on "HTTPS://x" is rejected here rather than returned. Returning a
// non-URL token is disallowed no matter which pattern produced it.
func validateReportURL(capture string) (string, bool) {
	trimmed := strings.TrimSpace(capture)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, true
	}
	return "", false
}
