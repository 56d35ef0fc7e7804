package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// BatchEngine applies lock, unlock, and rollback mutations across the fleet.
// Component mutations are best effort; the versions store is saved exactly
// once at the end of a batch, so persistence is all-or-nothing.
type BatchEngine struct {
	Store  *versions.Store
	Config *config.Config
	Root   string
	Open   RepoOpener
	Logger *slog.Logger
}

// LockAll pins each named component (or all, with all=true) to its current
// HEAD commit.
func (e *BatchEngine) LockAll(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	names, err := e.resolveNames(names, all)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, name := range names {
		comp, ok := e.Store.Component(name)
		if !ok {
			result.skip(name, "not found in versions file")
			continue
		}

		path, err := e.Config.ComponentPath(e.Root, name)
		if err != nil {
			result.skip(name, fmt.Sprintf("invalid component path: %v", err))
			continue
		}
		repo := e.open()(path, e.Config.RepoURL(name, comp.URL))
		if !repo.Exists() {
			result.skip(name, "repository not cloned")
			continue
		}
		info := repo.CommitInfo(ctx, "HEAD")
		if info == nil {
			result.skip(name, "cannot read HEAD commit")
			continue
		}

		e.Store.Lock(name, info.SHA)
		result.apply(name, fmt.Sprintf("locked at %s (%s)", info.ShortSHA, info.ShortDate()))
		e.logger().Info("locked", "component", name, "sha", info.ShortSHA)
	}

	return result, e.saveIfChanged(result)
}

// UnlockAll sets components back to tracking latest. Locked versions are
// preserved as rollback targets.
func (e *BatchEngine) UnlockAll(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	names, err := e.resolveNames(names, all)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, name := range names {
		if _, ok := e.Store.Component(name); !ok {
			result.skip(name, "not found in versions file")
			continue
		}
		if !e.Store.IsLocked(name) {
			result.skip(name, "already unlocked (tracking latest)")
			continue
		}

		locked := e.Store.LockedVersion(name)
		e.Store.Unlock(name)
		details := "now tracking latest"
		if locked != "" {
			details = fmt.Sprintf("now tracking latest; rollback target %s preserved", shortSHA(locked))
		}
		result.apply(name, details)
		e.logger().Info("unlocked", "component", name)
	}

	return result, e.saveIfChanged(result)
}

// RollbackAll checks each component's working copy out at its recorded
// locked version and sets the active version to match.
func (e *BatchEngine) RollbackAll(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	names, err := e.resolveNames(names, all)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, name := range names {
		comp, ok := e.Store.Component(name)
		if !ok {
			result.skip(name, "not found in versions file")
			continue
		}
		locked := e.Store.LockedVersion(name)
		if locked == "" {
			result.skip(name, "no locked version recorded")
			continue
		}

		path, err := e.Config.ComponentPath(e.Root, name)
		if err != nil {
			result.skip(name, fmt.Sprintf("invalid component path: %v", err))
			continue
		}
		repo := e.open()(path, e.Config.RepoURL(name, comp.URL))
		if !repo.Exists() {
			result.skip(name, "repository not cloned")
			continue
		}
		lockedInfo := repo.CommitInfo(ctx, locked)
		if lockedInfo == nil {
			result.skip(name, fmt.Sprintf("locked version %s no longer exists in history", shortSHA(locked)))
			continue
		}
		current := repo.CommitInfo(ctx, "HEAD")
		if current == nil {
			result.skip(name, "cannot read HEAD commit")
			continue
		}
		if current.SHA == lockedInfo.SHA {
			result.skip(name, fmt.Sprintf("already at locked version %s", lockedInfo.ShortSHA))
			continue
		}
		if repo.IsDirty(ctx) {
			result.skip(name, "uncommitted changes; commit or stash before rollback")
			continue
		}
		if err := repo.Checkout(ctx, locked, false); err != nil {
			result.skip(name, fmt.Sprintf("checkout failed: %v", err))
			continue
		}

		e.Store.Rollback(name)
		back := repo.CountCommitsBetween(ctx, lockedInfo.SHA, current.SHA)
		result.apply(name, fmt.Sprintf("rolled back %s → %s (%d commits)", current.ShortSHA, lockedInfo.ShortSHA, back))
		e.logger().Info("rolled back", "component", name, "from", current.ShortSHA, "to", lockedInfo.ShortSHA)
	}

	return result, e.saveIfChanged(result)
}

// resolveNames expands the --all form and rejects an empty selection.
func (e *BatchEngine) resolveNames(names []string, all bool) ([]string, error) {
	if all {
		return e.Store.Names(), nil
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no components specified")
	}
	return names, nil
}

// saveIfChanged persists the store once per batch. A save failure is the only
// batch-fatal condition.
func (e *BatchEngine) saveIfChanged(result *BatchResult) error {
	if result.Applied == 0 {
		return nil
	}
	if err := e.Store.Save(); err != nil {
		return fmt.Errorf("saving versions file: %w", err)
	}
	result.Saved = true
	return nil
}

func (r *BatchResult) apply(name, details string) {
	r.Actions = append(r.Actions, BatchAction{Name: name, Applied: true, Details: details})
	r.Applied++
}

func (r *BatchResult) skip(name, details string) {
	r.Actions = append(r.Actions, BatchAction{Name: name, Applied: false, Details: details})
}

func (e *BatchEngine) open() RepoOpener {
	if e.Open != nil {
		return e.Open
	}
	return OpenShellRepo
}

func (e *BatchEngine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
