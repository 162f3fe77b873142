package config

// Config is the top-level configuration parsed from scagate.yaml.
type Config struct {
	// Command is the full shell command that runs the scanner. Treated as
	// opaque; scagate never inspects or rewrites it.
	Command string `yaml:"command"`
	// Mode is the capture strategy: "buffered", "streaming", or empty for
	// the platform default.
	Mode string `yaml:"mode"`
	// OnFailure is the gate policy for a non-zero scanner exit: "fail" or
	// "warn".
	OnFailure string `yaml:"on_failure"`
	// LimitBytes caps buffered capture; 0 uses the built-in ceiling.
	LimitBytes int `yaml:"limit_bytes"`

	ResultFile  string `yaml:"result_file"`
	SidecarFile string `yaml:"sidecar_file"`
	SummaryFile string `yaml:"summary_file"`
	// EnvFile points at a .env file merged into the environment for local
	// runs.
	EnvFile string `yaml:"env_file"`

	Comment Comment `yaml:"comment"`
	History History `yaml:"history"`
}

// Comment configures the pull-request comment.
type Comment struct {
	Enabled  bool   `yaml:"enabled"`
	Template string `yaml:"template"` // project-level template file override
}

// History configures the local run-history database.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty means the XDG data dir default
}

// Overrides carries flag/env values that take precedence over the file.
// Empty fields leave the loaded value alone.
type Overrides struct {
	Command   string
	Mode      string
	OnFailure string
}
