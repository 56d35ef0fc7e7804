package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// UpdateEngine synchronizes component working copies with their remotes,
// one component at a time, strictly sequentially.
type UpdateEngine struct {
	Store  *versions.Store
	Config *config.Config
	Root   string // project root containing the components directory
	Open   RepoOpener
	Logger *slog.Logger
}

// UpdateOptions configures an update run.
type UpdateOptions struct {
	// Force discards uncommitted changes with a forced checkout instead of
	// refusing to touch a dirty tree. Locked components are never updated,
	// force or not.
	Force bool
}

// UpdateAll runs the per-component update for every component in the store,
// continuing past individual failures. Outcomes are returned in component
// order.
func (e *UpdateEngine) UpdateAll(ctx context.Context, opts UpdateOptions) []Outcome {
	names := e.Store.Names()
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		comp, _ := e.Store.Component(name)
		outcomes = append(outcomes, e.updateComponent(ctx, name, comp, opts))
	}
	return outcomes
}

// updateComponent runs the sync state machine for one component:
// clone-if-missing, fetch, locked guard, dirty guard, branch resolution,
// divergence comparison, then fast-forward merge or rebase.
func (e *UpdateEngine) updateComponent(ctx context.Context, name string, comp versions.Component, opts UpdateOptions) Outcome {
	log := e.logger().With("component", name)
	url := e.Config.RepoURL(name, comp.URL)
	path, err := e.Config.ComponentPath(e.Root, name)
	if err != nil {
		return Outcome{Name: name, Status: StatusError, Details: fmt.Sprintf("invalid component path: %v", err)}
	}
	repo := e.open()(path, url)

	if !repo.Exists() {
		if url == "" {
			return Outcome{Name: name, Status: StatusCloneFailed, Details: "no remote URL configured"}
		}
		log.Info("repository missing, cloning", "url", url)
		if err := repo.Clone(ctx); err != nil {
			return Outcome{Name: name, Status: StatusCloneFailed, Details: err.Error()}
		}
	} else if !repo.IsRepository() {
		return Outcome{Name: name, Status: StatusNotARepo, Details: "path exists but is not a git repository"}
	}

	// Best effort: a failed fetch means comparisons run against cached
	// remote refs instead of aborting the component.
	if err := repo.Fetch(ctx, true); err != nil {
		log.Warn("fetch failed, comparing against cached remote refs", "error", err)
	}

	if comp.Locked() {
		details := fmt.Sprintf("locked at %s; run 'vispctl unlock %s' before updating", shortSHA(comp.Version), name)
		return Outcome{Name: name, Status: StatusLocked, Details: details}
	}

	if repo.IsDirty(ctx) {
		if !opts.Force {
			return Outcome{Name: name, Status: StatusUncommitted, Details: "uncommitted changes; commit or stash them, or rerun with --force"}
		}
		log.Info("discarding uncommitted changes")
		if err := repo.Checkout(ctx, "HEAD", true); err != nil {
			return Outcome{Name: name, Status: StatusError, Details: fmt.Sprintf("discarding changes: %v", err)}
		}
	}

	current := repo.CommitInfo(ctx, "HEAD")
	if current == nil {
		return Outcome{Name: name, Status: StatusError, Details: "cannot read HEAD commit"}
	}

	remoteRef := "origin/" + defaultBranch(ctx, repo)
	remote := repo.CommitInfo(ctx, remoteRef)
	if remote == nil {
		return Outcome{Name: name, Status: StatusError, Details: fmt.Sprintf("cannot resolve %s", remoteRef)}
	}

	// Counting convention: behind = count(local..remote), ahead =
	// count(remote..local), the same pair the status report uses.
	behind := repo.CountCommitsBetween(ctx, current.SHA, remote.SHA)
	ahead := repo.CountCommitsBetween(ctx, remote.SHA, current.SHA)

	if behind == 0 {
		details := fmt.Sprintf("%s (%s)", current.ShortSHA, current.ShortDate())
		return Outcome{Name: name, Status: StatusUpToDate, Details: details}
	}

	if ahead > 0 {
		log.Info("local commits detected, rebasing", "ahead", ahead, "behind", behind)
		if err := repo.Rebase(ctx, remoteRef); err != nil {
			_ = repo.AbortRebase(ctx)
			log.Warn("rebase conflict, aborted", "error", err)
			return Outcome{Name: name, Status: StatusRebaseFailed, Details: "rebase conflict; manual merge needed"}
		}
	} else {
		if err := repo.MergeFFOnly(ctx, remoteRef); err != nil {
			return Outcome{Name: name, Status: StatusError, Details: fmt.Sprintf("fast-forward merge failed: %v", err)}
		}
	}

	updated := repo.CommitInfo(ctx, "HEAD")
	if updated == nil {
		return Outcome{Name: name, Status: StatusError, Details: "cannot read HEAD commit after update"}
	}
	log.Info("updated", "from", current.ShortSHA, "to", updated.ShortSHA, "commits", behind)
	details := fmt.Sprintf("%s → %s (%d commits)", current.ShortSHA, updated.ShortSHA, behind)
	return Outcome{Name: name, Status: StatusUpdated, Details: details}
}

func (e *UpdateEngine) open() RepoOpener {
	if e.Open != nil {
		return e.Open
	}
	return OpenShellRepo
}

func (e *UpdateEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
