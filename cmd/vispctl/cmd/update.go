package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humlab-speech/vispctl/internal/build"
	"github.com/humlab-speech/vispctl/internal/engine"
)

var (
	updateForce     bool
	updateSkipBuild bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Synchronize all component repositories with their remotes",
	Long: `Clones missing repositories and brings existing ones up to date with
their remote default branch. Locked components and working copies with
uncommitted changes are left untouched; local commits are rebased on top of
the remote. Components that declare npm steps are rebuilt after updating.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}
		logger := newLogger()
		store := loadStore(cfg, root)

		eng := &engine.UpdateEngine{
			Store:  store,
			Config: cfg,
			Root:   root,
			Logger: logger,
		}
		outcomes := eng.UpdateAll(cmd.Context(), engine.UpdateOptions{Force: updateForce})
		newRenderer().Outcomes(outcomes)

		var failed int
		for _, o := range outcomes {
			if o.Failed() {
				failed++
			}
		}

		if !updateSkipBuild {
			runner := build.NewRunner(build.DetectRuntime(cfg.Runtime), logger)
			for _, o := range outcomes {
				if o.Status != engine.StatusUpdated {
					continue
				}
				comp, _ := store.Component(o.Name)
				dir, err := cfg.ComponentPath(root, o.Name)
				if err != nil {
					errorf("%s: %v", o.Name, err)
					failed++
					continue
				}
				if err := runner.Build(cmd.Context(), o.Name, dir, comp); err != nil {
					errorf("%v", err)
					failed++
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d component(s) failed", failed)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "discard uncommitted changes instead of skipping the component")
	updateCmd.Flags().BoolVar(&updateSkipBuild, "skip-build", false, "do not run npm steps after updating")
	rootCmd.AddCommand(updateCmd)
}
