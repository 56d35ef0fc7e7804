package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/gitrepo"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// fakeRepo is a configurable in-memory stand-in for the shell-out adapter.
type fakeRepo struct {
	path string
	url  string

	exists bool
	isRepo bool
	dirty  bool
	branch string

	head    *gitrepo.Commit
	remote  *gitrepo.Commit // commit at origin/<branch>
	tagged  map[string]*gitrepo.Commit
	behind  int
	ahead   int
	counts  map[string]int // explicit "from..to" overrides
	remotes map[string]bool
	remURL  string

	cloneErr    error
	fetchErr    error
	checkoutErr error
	rebaseErr   error
	mergeErr    error

	cloned    bool
	fetched   bool
	rebased   bool
	aborted   bool
	merged    bool
	checkouts []string
}

func (f *fakeRepo) Path() string { return f.path }
func (f *fakeRepo) URL() string  { return f.url }
func (f *fakeRepo) Exists() bool { return f.exists }
func (f *fakeRepo) IsRepository() bool {
	return f.isRepo
}

func (f *fakeRepo) Clone(context.Context) error {
	f.cloned = true
	if f.cloneErr != nil {
		return f.cloneErr
	}
	f.exists = true
	f.isRepo = true
	return nil
}

func (f *fakeRepo) Fetch(context.Context, bool) error {
	f.fetched = true
	return f.fetchErr
}

func (f *fakeRepo) Checkout(_ context.Context, ref string, force bool) error {
	f.checkouts = append(f.checkouts, ref)
	if f.checkoutErr != nil {
		return f.checkoutErr
	}
	if force {
		f.dirty = false
	}
	if c := f.lookup(ref); c != nil {
		f.head = c
	}
	return nil
}

func (f *fakeRepo) IsDirty(context.Context) bool { return f.dirty }

func (f *fakeRepo) CurrentBranch(context.Context) string { return f.branch }

func (f *fakeRepo) CurrentCommit(context.Context) string {
	if f.head == nil {
		return ""
	}
	return f.head.SHA
}

func (f *fakeRepo) CommitInfo(_ context.Context, ref string) *gitrepo.Commit {
	return f.lookup(ref)
}

func (f *fakeRepo) lookup(ref string) *gitrepo.Commit {
	switch {
	case ref == "HEAD":
		return f.head
	case strings.HasPrefix(ref, "origin/"):
		if f.remotes[strings.TrimPrefix(ref, "origin/")] {
			return f.remote
		}
		return nil
	default:
		if c, ok := f.tagged[ref]; ok {
			return c
		}
		if f.head != nil && ref == f.head.SHA {
			return f.head
		}
		return nil
	}
}

func (f *fakeRepo) CountCommitsBetween(_ context.Context, fromRef, toRef string) int {
	if n, ok := f.counts[fromRef+".."+toRef]; ok {
		return n
	}
	if f.head != nil && f.remote != nil {
		if fromRef == f.head.SHA && toRef == f.remote.SHA {
			return f.behind
		}
		if fromRef == f.remote.SHA && toRef == f.head.SHA {
			return f.ahead
		}
	}
	// The status engine compares by ref name rather than SHA.
	if fromRef == "HEAD" {
		return f.behind
	}
	if toRef == "HEAD" {
		return f.ahead
	}
	return 0
}

func (f *fakeRepo) HasRemoteBranch(_ context.Context, branch, _ string) bool {
	return f.remotes[branch]
}

func (f *fakeRepo) RemoteURL(context.Context, string) string { return f.remURL }

func (f *fakeRepo) Rebase(_ context.Context, upstream string) error {
	if f.rebaseErr != nil {
		return f.rebaseErr
	}
	f.rebased = true
	if c := f.lookup(upstream); c != nil {
		f.head = &gitrepo.Commit{SHA: "rebased-" + c.SHA, ShortSHA: "rebased!", Date: c.Date}
	}
	return nil
}

func (f *fakeRepo) AbortRebase(context.Context) error {
	f.aborted = true
	return nil
}

func (f *fakeRepo) MergeFFOnly(_ context.Context, ref string) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merged = true
	if c := f.lookup(ref); c != nil {
		f.head = c
	}
	return nil
}

var _ gitrepo.Repo = (*fakeRepo)(nil)

// cleanRepo returns a fake repo that is cloned, clean, and synced with a
// remote main branch.
func cleanRepo() *fakeRepo {
	return &fakeRepo{
		exists: true,
		isRepo: true,
		branch: "main",
		head:   &gitrepo.Commit{SHA: "aaaaaaaaaaaa", ShortSHA: "aaaaaaaa", Date: "2026-08-01 10:00:00 +0000"},
		remote: &gitrepo.Commit{SHA: "bbbbbbbbbbbb", ShortSHA: "bbbbbbbb", Date: "2026-08-02 10:00:00 +0000"},
		remotes: map[string]bool{
			"main": true,
		},
		remURL: "https://github.com/humlab-speech/alpha.git",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultTestConfig() *config.Config {
	return config.Default()
}

// testStore builds a versions store seeded with the given components, backed
// by a file path inside dir.
func testStore(t *testing.T, dir string, comps map[string]versions.Component) *versions.Store {
	t.Helper()
	return versions.Load(filepath.Join(dir, "versions.json"), comps, discardLogger())
}

// openerFor routes each component name to its fake repo.
func openerFor(fakes map[string]*fakeRepo) RepoOpener {
	return func(path, url string) gitrepo.Repo {
		f, ok := fakes[filepath.Base(path)]
		if !ok {
			f = &fakeRepo{}
		}
		f.path = path
		f.url = url
		return f
	}
}
