// Package gitrepo wraps a single on-disk git working copy. Every query shells
// out to the git command; there is no caching layer, so two values pointing at
// the same path always observe the same repository state.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Commit holds metadata about a single commit.
type Commit struct {
	SHA      string
	ShortSHA string
	Date     string // as printed by git's %ci format
	Subject  string
	Author   string
}

// ShortDate returns the date portion (YYYY-MM-DD) of the commit date.
func (c *Commit) ShortDate() string {
	if c == nil || len(c.Date) < 10 {
		return "N/A"
	}
	return c.Date[:10]
}

// Repo is the set of git operations the sync engines rely on.
// *Repository implements it by shelling out; tests substitute fakes.
type Repo interface {
	Path() string
	URL() string
	Exists() bool
	IsRepository() bool
	Clone(ctx context.Context) error
	Fetch(ctx context.Context, quiet bool) error
	Checkout(ctx context.Context, ref string, force bool) error
	IsDirty(ctx context.Context) bool
	CurrentBranch(ctx context.Context) string
	CurrentCommit(ctx context.Context) string
	CommitInfo(ctx context.Context, ref string) *Commit
	CountCommitsBetween(ctx context.Context, fromRef, toRef string) int
	HasRemoteBranch(ctx context.Context, branch, remote string) bool
	RemoteURL(ctx context.Context, remote string) string
	Rebase(ctx context.Context, upstream string) error
	AbortRebase(ctx context.Context) error
	MergeFFOnly(ctx context.Context, ref string) error
}

// Repository is a git working copy at a fixed path. The zero value is not
// usable; construct with New.
type Repository struct {
	path string
	url  string
}

// New creates a repository handle for path. url may be empty for working
// copies that already exist on disk.
func New(path, url string) *Repository {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Repository{path: path, url: url}
}

// Path returns the absolute working-copy path.
func (r *Repository) Path() string { return r.path }

// URL returns the remote URL the repository was constructed with.
func (r *Repository) URL() string { return r.url }

// Exists reports whether the working-copy directory exists.
func (r *Repository) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// IsRepository reports whether the path contains a git metadata directory.
func (r *Repository) IsRepository() bool {
	_, err := os.Stat(filepath.Join(r.path, ".git"))
	return err == nil
}

// Clone clones the configured URL to the repository path.
func (r *Repository) Clone(ctx context.Context) error {
	if r.url == "" {
		return fmt.Errorf("cloning %s: no URL configured", r.path)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	cmd := exec.CommandContext(ctx, "git", "clone", r.url, r.path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", r.url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Fetch retrieves refs from all remotes without touching the working tree.
func (r *Repository) Fetch(ctx context.Context, quiet bool) error {
	args := []string{"fetch", "--all"}
	if quiet {
		args = append(args, "--quiet")
	}
	_, err := r.git(ctx, args...)
	return err
}

// Checkout moves the working tree to ref. force discards uncommitted changes.
func (r *Repository) Checkout(ctx context.Context, ref string, force bool) error {
	args := []string{"checkout"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, ref)
	_, err := r.git(ctx, args...)
	return err
}

// IsDirty reports whether the working tree has any uncommitted change.
func (r *Repository) IsDirty(ctx context.Context) bool {
	out, err := r.git(ctx, "status", "--porcelain")
	return err == nil && out != ""
}

// CurrentBranch returns the checked-out branch name, or "" if it cannot be
// determined (detached HEAD resolves to "HEAD").
func (r *Repository) CurrentBranch(ctx context.Context) string {
	out, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// CurrentCommit returns the full SHA of HEAD, or "" if it cannot be resolved.
func (r *Repository) CurrentCommit(ctx context.Context) string {
	out, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// CommitInfo returns metadata for ref, or nil if the ref does not resolve.
func (r *Repository) CommitInfo(ctx context.Context, ref string) *Commit {
	sha, err := r.git(ctx, "rev-parse", ref)
	if err != nil {
		return nil
	}
	short, err := r.git(ctx, "rev-parse", "--short", ref)
	if err != nil {
		return nil
	}
	out, err := r.git(ctx, "log", "-1", "--format=%ci|%s|%an", ref)
	if err != nil {
		return nil
	}
	c := &Commit{SHA: sha, ShortSHA: short}
	parts := strings.SplitN(out, "|", 3)
	if len(parts) > 0 {
		c.Date = parts[0]
	}
	if len(parts) > 1 {
		c.Subject = parts[1]
	}
	if len(parts) > 2 {
		c.Author = parts[2]
	}
	return c
}

// CountCommitsBetween counts commits reachable from toRef but not fromRef.
// Returns 0 when the refs are equal or the range does not resolve.
func (r *Repository) CountCommitsBetween(ctx context.Context, fromRef, toRef string) int {
	out, err := r.git(ctx, "rev-list", "--count", fromRef+".."+toRef)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(out)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// HasRemoteBranch reports whether remote/branch resolves to a commit.
func (r *Repository) HasRemoteBranch(ctx context.Context, branch, remote string) bool {
	_, err := r.git(ctx, "rev-parse", remote+"/"+branch)
	return err == nil
}

// RemoteURL returns the fetch URL configured for remote, or "" if the remote
// is not configured. A repository without a remote is local-only, not broken.
func (r *Repository) RemoteURL(ctx context.Context, remote string) string {
	out, err := r.git(ctx, "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return out
}

// Rebase replays local commits on top of upstream (e.g. "origin/main").
func (r *Repository) Rebase(ctx context.Context, upstream string) error {
	_, err := r.git(ctx, "rebase", upstream)
	return err
}

// AbortRebase aborts an in-progress rebase, restoring the pre-rebase state.
func (r *Repository) AbortRebase(ctx context.Context) error {
	_, err := r.git(ctx, "rebase", "--abort")
	return err
}

// MergeFFOnly fast-forwards the current branch to ref. Fails rather than
// creating a merge commit when a fast-forward is not possible.
func (r *Repository) MergeFFOnly(ctx context.Context, ref string) error {
	_, err := r.git(ctx, "merge", "--ff-only", ref)
	return err
}

// git runs a git subcommand inside the working copy and returns trimmed
// combined output.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.path}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
