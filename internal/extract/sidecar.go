package extract

import (
	"encoding/json"
	"os"
)

// sidecarReport mirrors the scanner's JSON sidecar file. Only the first
// record's metadata.report field is consulted.
type sidecarReport struct {
	Records []sidecarRecord `json:"records"`
}

type sidecarRecord struct {
	Metadata sidecarMetadata `json:"metadata"`
}

type sidecarMetadata struct {
	Report string `json:"report"`
}

// fromSidecar reads the sidecar JSON file and returns records[0].metadata.report
// if it is a valid http(s) URL. Absence of the file and malformed JSON both
// degrade to ok=false: the sidecar is a secondary source, never a hard
// requirement.
func (e *Extractor) fromSidecar() (string, bool) {
	if e.sidecarPath == "" {
		e.logger.Debug("sidecar fallback disabled")
		return "", false
	}

	data, err := os.ReadFile(e.sidecarPath)
	if err != nil {
		e.logger.Debug("sidecar file not readable", "path", e.sidecarPath, "error", err)
		return "", false
	}
	e.logger.Debug("sidecar file present", "path", e.sidecarPath, "bytes", len(data))

	var report sidecarReport
	if err := json.Unmarshal(data, &report); err != nil {
		e.logger.Debug("sidecar JSON malformed", "path", e.sidecarPath, "error", err)
		return "", false
	}

	if len(report.Records) == 0 {
		e.logger.Debug("sidecar has no records")
		return "", false
	}

	url, ok := validateReportURL(report.Records[0].Metadata.Report)
	if !ok {
		e.logger.Debug("sidecar report field is not an http(s) URL",
			"value", report.Records[0].Metadata.Report)
		return "", false
	}
	return url, true
}
