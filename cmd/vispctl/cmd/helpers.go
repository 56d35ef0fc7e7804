package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/report"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// projectRoot returns the directory containing the config file. Component
// working copies and the versions file are resolved relative to it.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return filepath.Dir(abs), nil
}

// versionsFile returns the effective versions file path, honoring the
// --versions-file override.
func versionsFile(cfg *config.Config, root string) string {
	path := versionsPath
	if path == "" {
		path = cfg.VersionsFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return path
}

// loadStore opens the versions store, falling back to defaults when the file
// is missing or unreadable.
func loadStore(cfg *config.Config, root string) *versions.Store {
	return versions.Load(versionsFile(cfg, root), versions.Defaults(), newLogger())
}

// newLogger builds the slog logger honoring --verbose and --quiet.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newRenderer builds the table renderer for stdout.
func newRenderer() *report.Renderer {
	return report.NewRenderer(os.Stdout)
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
