// Package engine decides, for each component in the fleet, whether its
// working copy is up to date, ahead, behind, diverged, or locked, and what
// git action to take. Guards (locked, dirty) are outcomes, never errors; only
// failures of the versions store itself propagate as errors.
package engine

import (
	"context"

	"github.com/humlab-speech/vispctl/internal/gitrepo"
)

// Status classifies the outcome of one synchronization attempt.
type Status string

const (
	StatusMissing      Status = "missing"
	StatusNotARepo     Status = "not-a-repository"
	StatusLocked       Status = "locked"
	StatusUpToDate     Status = "up-to-date"
	StatusUpdated      Status = "updated"
	StatusUncommitted  Status = "has-uncommitted-changes"
	StatusRebaseFailed Status = "rebase-failed"
	StatusCloneFailed  Status = "clone-failed"
	StatusError        Status = "error"
)

// Outcome is the result of synchronizing one component.
type Outcome struct {
	Name    string
	Status  Status
	Details string
}

// Failed reports whether the outcome is a failure requiring attention, as
// opposed to a guard or a success.
func (o Outcome) Failed() bool {
	switch o.Status {
	case StatusCloneFailed, StatusRebaseFailed, StatusNotARepo, StatusError:
		return true
	}
	return false
}

// SyncState classifies a working copy relative to its remote in the
// read-only status report.
type SyncState string

const (
	SyncSynced         SyncState = "synced"
	SyncAhead          SyncState = "ahead"
	SyncBehind         SyncState = "behind"
	SyncDiverged       SyncState = "diverged"
	SyncNoRemoteBranch SyncState = "no-remote-branch"
	SyncLocalOnly      SyncState = "local-only"
	SyncMissing        SyncState = "missing"
	SyncNotARepo       SyncState = "not-a-repository"
)

// ComponentStatus is one row of the fleet status report.
type ComponentStatus struct {
	Name          string
	Locked        bool
	Version       string
	LockedVersion string
	Commit        string // current HEAD short SHA, or "N/A"
	Dirty         bool
	Ahead         int
	Behind        int
	State         SyncState
	Details       string
}

// BatchAction records the effect of one batch mutation on one component.
type BatchAction struct {
	Name    string
	Applied bool
	Details string
}

// BatchResult aggregates a lock, unlock, or rollback batch. The versions
// store is saved at most once per batch, after all component mutations.
type BatchResult struct {
	Actions []BatchAction
	Applied int
	Saved   bool
}

// defaultBranch probes for a remote main branch and falls back to master,
// handling repositories migrated between the two naming conventions.
func defaultBranch(ctx context.Context, repo gitrepo.Repo) string {
	if repo.HasRemoteBranch(ctx, "main", "origin") {
		return "main"
	}
	return "master"
}

// RepoOpener constructs the repository adapter for a working-copy path.
// Tests substitute fakes; production code uses OpenShellRepo.
type RepoOpener func(path, url string) gitrepo.Repo

// OpenShellRepo opens a shell-out git repository adapter.
func OpenShellRepo(path, url string) gitrepo.Repo {
	return gitrepo.New(path, url)
}

// shortSHA truncates a SHA for display.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
