package artifact

import "time"

// SummaryFileName is the JSON artifact written beside the result file after
// every run. `scagate comment` replays it to post a comment later.
const SummaryFileName = "scagate-run.json"

// RunSummary is the machine-readable record of one scanner run.
type RunSummary struct {
	Repo       string    `json:"repo,omitempty"`
	PR         int       `json:"pr,omitempty"`
	Command    string    `json:"command"`
	Mode       string    `json:"mode"`
	ExitCode   int       `json:"exit_code"`
	Truncated  bool      `json:"truncated,omitempty"`
	ReportURL  string    `json:"report_url,omitempty"`
	URLSource  string    `json:"url_source,omitempty"`
	Passed     bool      `json:"passed"`
	Reason     string    `json:"reason,omitempty"`
	DurationMs int       `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// WriteSummary persists the run summary atomically at path.
func WriteSummary(path string, s *RunSummary) error {
	return WriteJSON(path, s)
}

// ReadSummary loads a run summary from path.
func ReadSummary(path string) (*RunSummary, error) {
	var s RunSummary
	if err := ReadJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
