package config

import "fmt"

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var recognizedModes = map[string]bool{
	"":          true, // platform default
	"buffered":  true,
	"streaming": true,
}

var recognizedPolicies = map[string]bool{
	"fail": true,
	"warn": true,
}

// Validate checks a Config for structural and semantic errors after all
// merges (file, env, flags) have been applied. It returns every error found,
// empty if valid.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Command == "" {
		errs = append(errs, ValidationError{Field: "command", Message: "is required"})
	}
	if !recognizedModes[cfg.Mode] {
		errs = append(errs, ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("unrecognized mode %q (want buffered or streaming)", cfg.Mode),
		})
	}
	if !recognizedPolicies[cfg.OnFailure] {
		errs = append(errs, ValidationError{
			Field:   "on_failure",
			Message: fmt.Sprintf("unrecognized policy %q (want fail or warn)", cfg.OnFailure),
		})
	}
	if cfg.LimitBytes < 0 {
		errs = append(errs, ValidationError{Field: "limit_bytes", Message: "must not be negative"})
	}
	if cfg.ResultFile == "" {
		errs = append(errs, ValidationError{Field: "result_file", Message: "is required"})
	}

	return errs
}
