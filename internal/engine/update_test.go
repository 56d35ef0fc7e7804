package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/humlab-speech/vispctl/internal/gitrepo"
	"github.com/humlab-speech/vispctl/internal/versions"
)

func newUpdateEngine(t *testing.T, comps map[string]versions.Component, fakes map[string]*fakeRepo) *UpdateEngine {
	t.Helper()
	return &UpdateEngine{
		Store:  testStore(t, t.TempDir(), comps),
		Config: defaultTestConfig(),
		Root:   t.TempDir(),
		Open:   openerFor(fakes),
		Logger: discardLogger(),
	}
}

func TestUpdateAllUpToDate(t *testing.T) {
	repo := cleanRepo()
	repo.remote = repo.head // synced

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}
	if outcomes[0].Status != StatusUpToDate {
		t.Errorf("status = %q, want up-to-date (%s)", outcomes[0].Status, outcomes[0].Details)
	}
	if !repo.fetched {
		t.Error("update must fetch before comparing")
	}
}

func TestUpdateAllFastForward(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 3

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("status = %q, want updated (%s)", outcomes[0].Status, outcomes[0].Details)
	}
	if !repo.merged {
		t.Error("behind-only component must fast-forward merge")
	}
	if repo.rebased {
		t.Error("behind-only component must not rebase")
	}
	if !strings.Contains(outcomes[0].Details, "3") {
		t.Errorf("details %q should mention the commit count", outcomes[0].Details)
	}
	if repo.head.SHA != "bbbbbbbbbbbb" {
		t.Errorf("HEAD after update = %q, want remote SHA", repo.head.SHA)
	}
}

func TestUpdateAllRebaseWhenAhead(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 2
	repo.ahead = 1

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("status = %q, want updated (%s)", outcomes[0].Status, outcomes[0].Details)
	}
	if !repo.rebased || repo.merged {
		t.Errorf("ahead component must rebase, not merge (rebased=%v merged=%v)", repo.rebased, repo.merged)
	}
}

func TestUpdateAllRebaseConflict(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 2
	repo.ahead = 1
	repo.rebaseErr = fmt.Errorf("CONFLICT in a.txt")

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusRebaseFailed {
		t.Fatalf("status = %q, want rebase-failed", outcomes[0].Status)
	}
	if !repo.aborted {
		t.Error("conflicting rebase must be aborted")
	}
	if repo.head.SHA != "aaaaaaaaaaaa" {
		t.Errorf("HEAD after aborted rebase = %q, want original SHA", repo.head.SHA)
	}
}

func TestUpdateAllAheadOnlyIsUpToDate(t *testing.T) {
	repo := cleanRepo()
	repo.ahead = 2 // behind == 0: nothing to pull regardless of ahead

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUpToDate {
		t.Errorf("status = %q, want up-to-date", outcomes[0].Status)
	}
	if repo.rebased || repo.merged {
		t.Error("no mutation expected when behind == 0")
	}
}

func TestUpdateAllLockedGuard(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 5

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: "deadbeefcafe", LockedVersion: "deadbeefcafe"}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusLocked {
		t.Fatalf("status = %q, want locked", outcomes[0].Status)
	}
	if !strings.Contains(outcomes[0].Details, "deadbeef") {
		t.Errorf("details %q should name the locked SHA", outcomes[0].Details)
	}
	if repo.rebased || repo.merged || len(repo.checkouts) > 0 {
		t.Error("locked component must not be mutated")
	}
	if repo.head.SHA != "aaaaaaaaaaaa" {
		t.Errorf("HEAD of locked component changed to %q", repo.head.SHA)
	}
}

func TestUpdateAllDirtyGuard(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 1
	repo.dirty = true

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUncommitted {
		t.Fatalf("status = %q, want has-uncommitted-changes", outcomes[0].Status)
	}
	if repo.merged || repo.rebased {
		t.Error("dirty component must not be mutated")
	}
}

func TestUpdateAllForceDiscardsChanges(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 1
	repo.dirty = true

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{Force: true})
	if outcomes[0].Status != StatusUpdated {
		t.Fatalf("status = %q, want updated (%s)", outcomes[0].Status, outcomes[0].Details)
	}
	if len(repo.checkouts) == 0 {
		t.Error("force must discard changes via a forced checkout")
	}
	if !repo.merged {
		t.Error("update must proceed after discarding changes")
	}
}

func TestUpdateAllCloneMissing(t *testing.T) {
	head := &gitrepo.Commit{SHA: "cccccccccccc", ShortSHA: "cccccccc", Date: "2026-08-03 10:00:00 +0000"}
	repo := &fakeRepo{ // not yet cloned; clone brings it in sync
		branch:  "main",
		head:    head,
		remote:  head,
		remotes: map[string]bool{"main": true},
		remURL:  "https://github.com/humlab-speech/alpha.git",
	}

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if !repo.cloned {
		t.Fatal("missing repository must be cloned")
	}
	if outcomes[0].Status != StatusUpToDate {
		t.Errorf("status = %q, want up-to-date after fresh clone", outcomes[0].Status)
	}
}

func TestUpdateAllContinuesPastFailures(t *testing.T) {
	failing := &fakeRepo{cloneErr: fmt.Errorf("remote unreachable")}
	healthy := cleanRepo()
	healthy.remote = healthy.head

	eng := newUpdateEngine(t,
		map[string]versions.Component{
			"alpha": {Version: versions.Latest},
			"beta":  {Version: versions.Latest},
		},
		map[string]*fakeRepo{"alpha": failing, "beta": healthy})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[0].Status != StatusCloneFailed {
		t.Errorf("alpha status = %q, want clone-failed", outcomes[0].Status)
	}
	if !outcomes[0].Failed() {
		t.Error("clone-failed must count as a failure")
	}
	if outcomes[1].Status != StatusUpToDate {
		t.Errorf("beta status = %q, want up-to-date", outcomes[1].Status)
	}
}

func TestUpdateAllNotARepository(t *testing.T) {
	repo := &fakeRepo{exists: true, isRepo: false}

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusNotARepo {
		t.Errorf("status = %q, want not-a-repository", outcomes[0].Status)
	}
}

func TestUpdateAllRejectsTraversalName(t *testing.T) {
	eng := newUpdateEngine(t,
		map[string]versions.Component{"../../escape": {Version: versions.Latest}},
		map[string]*fakeRepo{})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusError {
		t.Errorf("status = %q, want error for path-escaping name", outcomes[0].Status)
	}
	if !strings.Contains(outcomes[0].Details, "invalid component path") {
		t.Errorf("details = %q", outcomes[0].Details)
	}
}

func TestUpdateAllFetchFailureTolerated(t *testing.T) {
	repo := cleanRepo()
	repo.remote = repo.head
	repo.fetchErr = fmt.Errorf("network down")

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUpToDate {
		t.Errorf("status = %q, want up-to-date from cached refs", outcomes[0].Status)
	}
}

func TestUpdateAllMasterFallback(t *testing.T) {
	repo := cleanRepo()
	repo.remotes = map[string]bool{"master": true}
	repo.behind = 1

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusUpdated {
		t.Errorf("status = %q, want updated via origin/master (%s)", outcomes[0].Status, outcomes[0].Details)
	}
}

func TestUpdateAllNoRemoteBranch(t *testing.T) {
	repo := cleanRepo()
	repo.remotes = map[string]bool{}

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusError {
		t.Errorf("status = %q, want error when no remote branch resolves", outcomes[0].Status)
	}
}

func TestUpdateAllFFMergeErrorSurfaces(t *testing.T) {
	repo := cleanRepo()
	repo.behind = 1
	repo.mergeErr = fmt.Errorf("not a fast-forward")

	eng := newUpdateEngine(t,
		map[string]versions.Component{"alpha": {Version: versions.Latest}},
		map[string]*fakeRepo{"alpha": repo})

	outcomes := eng.UpdateAll(context.Background(), UpdateOptions{})
	if outcomes[0].Status != StatusError {
		t.Errorf("status = %q, want error for failed fast-forward", outcomes[0].Status)
	}
}
