package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file searched for in the working directory.
const DefaultFileName = "scagate.yaml"

// Load reads and parses a configuration from the given YAML file path, then
// applies defaults for anything the file leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches standard locations and loads the first config found:
// ./scagate.yaml, then ~/.config/scagate/scagate.yaml. When none exists it
// returns a pure-defaults config — everything can come from flags and env.
func LoadDefault() (*Config, error) {
	candidates := []string{DefaultFileName}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "scagate", DefaultFileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &Config{}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a config with only defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.OnFailure == "" {
		cfg.OnFailure = "fail"
	}
	if cfg.ResultFile == "" {
		cfg.ResultFile = "sca-output.txt"
	}
	if cfg.SidecarFile == "" {
		cfg.SidecarFile = "scan-report.json"
	}
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = "scagate-run.json"
	}
}

// ApplyEnv merges SCAGATE_* environment variables into the config. Env wins
// over the file; flags (via ApplyOverrides) win over both.
func (c *Config) ApplyEnv(env map[string]string) {
	if v := env["SCAGATE_COMMAND"]; v != "" {
		c.Command = v
	}
	if v := env["SCAGATE_MODE"]; v != "" {
		c.Mode = v
	}
	if v := env["SCAGATE_ON_FAILURE"]; v != "" {
		c.OnFailure = v
	}
	if v := env["SCAGATE_RESULT_FILE"]; v != "" {
		c.ResultFile = v
	}
	if v := env["SCAGATE_SIDECAR_FILE"]; v != "" {
		c.SidecarFile = v
	}
}

// ApplyOverrides merges non-empty flag values into the config.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Command != "" {
		c.Command = o.Command
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.OnFailure != "" {
		c.OnFailure = o.OnFailure
	}
}
