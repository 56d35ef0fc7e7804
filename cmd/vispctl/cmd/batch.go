package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/humlab-speech/vispctl/internal/engine"
)

type batchFunc func(ctx context.Context, names []string, all bool) (*engine.BatchResult, error)

// runBatch wires the shared plumbing of lock, unlock, and rollback: load
// config and store, run the batch, render the result. Only a versions-file
// save failure (or an empty selection) is a command error.
func runBatch(cmd *cobra.Command, names []string, all bool, verb string, pick func(*engine.BatchEngine) batchFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := projectRoot()
	if err != nil {
		return err
	}

	eng := &engine.BatchEngine{
		Store:  loadStore(cfg, root),
		Config: cfg,
		Root:   root,
		Logger: newLogger(),
	}
	result, err := pick(eng)(cmd.Context(), names, all)
	if result != nil {
		newRenderer().Batch(verb, result)
	}
	return err
}
