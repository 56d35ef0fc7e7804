package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a vispctl.yaml configuration file. A missing file
// is not an error; the built-in defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.ComponentsDir == "" {
		errs = append(errs, "'components_dir' is required")
	}
	if cfg.VersionsFile == "" {
		errs = append(errs, "'versions_file' is required")
	}
	if cfg.Git.Host == "" {
		errs = append(errs, "'git.host' is required")
	}
	if cfg.Git.Org == "" {
		errs = append(errs, "'git.org' is required")
	}

	switch cfg.Runtime {
	case "", "docker", "podman":
		// valid
	default:
		errs = append(errs, fmt.Sprintf("invalid runtime '%s': must be docker or podman", cfg.Runtime))
	}

	return errs
}
