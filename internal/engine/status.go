package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// StatusEngine produces the read-only fleet status report. It never rebases,
// merges, or checks anything out.
type StatusEngine struct {
	Store  *versions.Store
	Config *config.Config
	Root   string
	Open   RepoOpener
	Logger *slog.Logger
}

// StatusOptions configures a status run.
type StatusOptions struct {
	// Fetch refreshes remote-tracking refs before comparing. Fetch failures
	// are tolerated; comparisons then use cached refs.
	Fetch bool
}

// StatusAll reports existence, lock state, current commit, and sync
// classification for every component, in component order.
func (e *StatusEngine) StatusAll(ctx context.Context, opts StatusOptions) []ComponentStatus {
	names := e.Store.Names()
	statuses := make([]ComponentStatus, 0, len(names))
	for _, name := range names {
		comp, _ := e.Store.Component(name)
		statuses = append(statuses, e.statusComponent(ctx, name, comp, opts))
	}
	return statuses
}

func (e *StatusEngine) statusComponent(ctx context.Context, name string, comp versions.Component, opts StatusOptions) ComponentStatus {
	cs := ComponentStatus{
		Name:          name,
		Locked:        comp.Locked(),
		Version:       comp.Version,
		LockedVersion: comp.LockedVersion,
		Commit:        "N/A",
	}

	path, err := e.Config.ComponentPath(e.Root, name)
	if err != nil {
		cs.State = SyncNotARepo
		cs.Details = fmt.Sprintf("invalid component path: %v", err)
		return cs
	}
	repo := e.open()(path, e.Config.RepoURL(name, comp.URL))
	if !repo.Exists() {
		cs.State = SyncMissing
		cs.Details = "repository not cloned"
		return cs
	}
	if !repo.IsRepository() {
		cs.State = SyncNotARepo
		cs.Details = "path exists but is not a git repository"
		return cs
	}

	if opts.Fetch {
		if err := repo.Fetch(ctx, true); err != nil {
			e.logger().Warn("fetch failed, using cached remote refs", "component", name, "error", err)
		}
	}

	if sha := repo.CurrentCommit(ctx); sha != "" {
		cs.Commit = shortSHA(sha)
	}
	cs.Dirty = repo.IsDirty(ctx)

	if repo.RemoteURL(ctx, "origin") == "" {
		cs.State = SyncLocalOnly
		cs.Details = "no remote configured"
		return cs
	}

	// Compare against the checked-out branch; a detached HEAD (a locked
	// component pinned to a SHA) compares against the default branch.
	branch := repo.CurrentBranch(ctx)
	if branch == "" || branch == "HEAD" {
		branch = defaultBranch(ctx, repo)
	}
	if !repo.HasRemoteBranch(ctx, branch, "origin") {
		cs.State = SyncNoRemoteBranch
		cs.Details = fmt.Sprintf("origin/%s not found", branch)
		return cs
	}

	remoteRef := "origin/" + branch
	cs.Behind = repo.CountCommitsBetween(ctx, "HEAD", remoteRef)
	cs.Ahead = repo.CountCommitsBetween(ctx, remoteRef, "HEAD")

	var details []string
	switch {
	case cs.Ahead > 0 && cs.Behind > 0:
		cs.State = SyncDiverged
	case cs.Ahead > 0:
		cs.State = SyncAhead
	case cs.Behind > 0:
		cs.State = SyncBehind
	default:
		cs.State = SyncSynced
	}
	if cs.Ahead > 0 {
		details = append(details, fmt.Sprintf("%d ahead", cs.Ahead))
	}
	if cs.Behind > 0 {
		details = append(details, fmt.Sprintf("%d behind", cs.Behind))
	}
	if len(details) == 0 {
		details = append(details, "up to date")
	}
	cs.Details = strings.Join(details, ", ")
	return cs
}

func (e *StatusEngine) open() RepoOpener {
	if e.Open != nil {
		return e.Open
	}
	return OpenShellRepo
}

func (e *StatusEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
