package config

import (
	"fmt"
	"path/filepath"

	"github.com/humlab-speech/vispctl/internal/pathsafe"
)

// Config represents the vispctl.yaml toolkit configuration file.
type Config struct {
	// ComponentsDir is the directory containing component working copies,
	// relative to the project root.
	ComponentsDir string `yaml:"components_dir"`

	// VersionsFile is the path of the versions document, relative to the
	// project root.
	VersionsFile string `yaml:"versions_file"`

	Git GitConfig `yaml:"git"`

	// Runtime selects the container runtime for build steps: "docker",
	// "podman", or "" to auto-detect.
	Runtime string `yaml:"runtime,omitempty"`
}

// GitConfig describes the convention-based remote URL for components that do
// not declare one: https://<host>/<org>/<name>.git
type GitConfig struct {
	Host string `yaml:"host"`
	Org  string `yaml:"org"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ComponentsDir: "external",
		VersionsFile:  "versions.json",
		Git: GitConfig{
			Host: "github.com",
			Org:  "humlab-speech",
		},
	}
}

// RepoURL returns the remote URL for a component: the explicit override when
// set, otherwise the convention-based URL.
func (c *Config) RepoURL(name, override string) string {
	if override != "" {
		return override
	}
	return fmt.Sprintf("https://%s/%s/%s.git", c.Git.Host, c.Git.Org, name)
}

// ComponentPath returns the working-copy path for a component under root.
// Component names come from the versions file, so the result is confined to
// the components directory.
func (c *Config) ComponentPath(root, name string) (string, error) {
	return pathsafe.Resolve(root, filepath.Join(c.ComponentsDir, name))
}
