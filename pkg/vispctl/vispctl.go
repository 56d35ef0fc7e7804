// Package vispctl provides the Go library API for embedding fleet
// synchronization in other tools.
//
// A Client wraps the versions store and the synchronization engines behind a
// small surface:
//
//	client, err := vispctl.New(vispctl.Options{Root: "/srv/visp"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcomes := client.Update(ctx, vispctl.UpdateOptions{})
//	statuses := client.Status(ctx, vispctl.StatusOptions{})
//	result, err := client.Lock(ctx, nil, true)
package vispctl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/humlab-speech/vispctl/internal/config"
	"github.com/humlab-speech/vispctl/internal/engine"
	"github.com/humlab-speech/vispctl/internal/versions"
)

// Options configures a Client.
type Options struct {
	// Root is the project root; component working copies and the versions
	// file resolve relative to it.
	Root string

	// ConfigPath locates the vispctl.yaml file. Empty means "vispctl.yaml"
	// under Root; a missing file yields the built-in defaults.
	ConfigPath string

	// VersionsPath overrides the versions file location from the config.
	VersionsPath string

	Logger *slog.Logger

	// Open substitutes the repository adapter constructor, for tests.
	Open engine.RepoOpener
}

// Client exposes the fleet operations as a library.
type Client struct {
	cfg    *config.Config
	store  *versions.Store
	root   string
	open   engine.RepoOpener
	logger *slog.Logger
}

// New loads configuration and the versions store and returns a ready Client.
func New(opts Options) (*Client, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(root, "vispctl.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	versionsPath := opts.VersionsPath
	if versionsPath == "" {
		versionsPath = cfg.VersionsFile
	}
	if !filepath.IsAbs(versionsPath) {
		versionsPath = filepath.Join(root, versionsPath)
	}

	return &Client{
		cfg:    cfg,
		store:  versions.Load(versionsPath, versions.Defaults(), logger),
		root:   root,
		open:   opts.Open,
		logger: logger,
	}, nil
}

// Components returns the configured component names in sorted order.
func (c *Client) Components() []string {
	return c.store.Names()
}

// Update synchronizes every component with its remote and reports the
// per-component outcomes.
func (c *Client) Update(ctx context.Context, opts UpdateOptions) []Outcome {
	eng := &engine.UpdateEngine{Store: c.store, Config: c.cfg, Root: c.root, Open: c.open, Logger: c.logger}
	return eng.UpdateAll(ctx, opts)
}

// Status reports the read-only sync state of every component.
func (c *Client) Status(ctx context.Context, opts StatusOptions) []ComponentStatus {
	eng := &engine.StatusEngine{Store: c.store, Config: c.cfg, Root: c.root, Open: c.open, Logger: c.logger}
	return eng.StatusAll(ctx, opts)
}

// Lock pins the named components (or all) to their current commit and saves
// the versions file.
func (c *Client) Lock(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	return c.batch().LockAll(ctx, names, all)
}

// Unlock sets the named components (or all) back to tracking latest and
// saves the versions file.
func (c *Client) Unlock(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	return c.batch().UnlockAll(ctx, names, all)
}

// Rollback checks the named components (or all) out at their recorded locked
// version and saves the versions file.
func (c *Client) Rollback(ctx context.Context, names []string, all bool) (*BatchResult, error) {
	return c.batch().RollbackAll(ctx, names, all)
}

func (c *Client) batch() *engine.BatchEngine {
	return &engine.BatchEngine{Store: c.store, Config: c.cfg, Root: c.root, Open: c.open, Logger: c.logger}
}
