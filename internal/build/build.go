// Package build runs the post-sync npm steps for components that declare
// them. Builds run in disposable Node.js containers when a container runtime
// is available, falling back to host npm otherwise.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/humlab-speech/vispctl/internal/versions"
)

// nodeImage is the image used for containerized npm steps.
const nodeImage = "node:20"

// Error describes a failed build step for one component.
type Error struct {
	Component string
	Step      string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DetectRuntime returns the container runtime to use: the explicit override
// when set, otherwise the first of podman and docker found on PATH, otherwise
// "". The result is passed around explicitly; nothing caches it process-wide.
func DetectRuntime(override string) string {
	if override != "" {
		return override
	}
	for _, rt := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(rt); err == nil {
			return rt
		}
	}
	return ""
}

// Runner executes npm install and npm build steps in a component directory.
type Runner struct {
	// Runtime is the container runtime for build containers; "" runs npm
	// directly on the host.
	Runtime string

	Logger *slog.Logger

	// run is swapped out by tests.
	run func(ctx context.Context, dir, name string, args ...string) error
}

// NewRunner creates a build runner using the given container runtime.
func NewRunner(runtime string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Runtime: runtime, Logger: logger, run: runCommand}
}

// Build runs the npm steps declared for a component in its working copy.
// node_modules is removed before a fresh install.
func (r *Runner) Build(ctx context.Context, name, dir string, comp versions.Component) error {
	if !comp.NpmInstall && !comp.NpmBuild {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
		r.Logger.Warn("no package.json, skipping build steps", "component", name)
		return nil
	}

	if comp.NpmInstall {
		if err := os.RemoveAll(filepath.Join(dir, "node_modules")); err != nil {
			return &Error{Component: name, Step: "clean node_modules", Err: err}
		}
		r.Logger.Info("installing dependencies", "component", name)
		if err := r.npm(ctx, dir, "install"); err != nil {
			return &Error{Component: name, Step: "npm install", Err: err}
		}
	}
	if comp.NpmBuild {
		r.Logger.Info("building", "component", name)
		if err := r.npm(ctx, dir, "run", "build"); err != nil {
			return &Error{Component: name, Step: "npm run build", Err: err}
		}
	}
	return nil
}

// npm runs an npm subcommand, containerized when a runtime is configured so
// the host stays clean and the Node version stays consistent.
func (r *Runner) npm(ctx context.Context, dir string, args ...string) error {
	runner := r.run
	if runner == nil {
		runner = runCommand
	}
	if r.Runtime == "" {
		return runner(ctx, dir, "npm", args...)
	}
	containerArgs := []string{
		"run", "--rm",
		"-v", dir + ":/app",
		"-w", "/app",
		nodeImage,
		"npm",
	}
	containerArgs = append(containerArgs, args...)
	return runner(ctx, dir, r.Runtime, containerArgs...)
}

func runCommand(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(out))
	}
	return nil
}
