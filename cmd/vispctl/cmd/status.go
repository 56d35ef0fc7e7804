package cmd

import (
	"github.com/spf13/cobra"

	"github.com/humlab-speech/vispctl/internal/engine"
)

var statusNoFetch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync state of all component repositories",
	Long: `Shows each component's lock state, current commit, and position
relative to its remote branch (synced, ahead, behind, diverged). Read-only:
no working copy is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}

		eng := &engine.StatusEngine{
			Store:  loadStore(cfg, root),
			Config: cfg,
			Root:   root,
			Logger: newLogger(),
		}
		statuses := eng.StatusAll(cmd.Context(), engine.StatusOptions{Fetch: !statusNoFetch})
		newRenderer().Statuses(statuses)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusNoFetch, "no-fetch", false, "compare against cached remote refs without fetching")
	rootCmd.AddCommand(statusCmd)
}
