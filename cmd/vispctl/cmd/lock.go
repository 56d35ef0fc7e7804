package cmd

import (
	"github.com/spf13/cobra"

	"github.com/humlab-speech/vispctl/internal/engine"
)

var lockAll bool

var lockCmd = &cobra.Command{
	Use:   "lock [component...]",
	Short: "Pin components to their current commit",
	Long: `Records each component's current HEAD commit in the versions file and
stops it from following the remote. Locked commits are the targets for a
later rollback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, lockAll, "locked",
			func(e *engine.BatchEngine) batchFunc { return e.LockAll })
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock [component...]",
	Short: "Set components back to tracking the latest remote commit",
	Long: `Removes the version pin so the component follows its remote branch
again. The previously locked commit is kept as a rollback target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, unlockAllFlag, "unlocked",
			func(e *engine.BatchEngine) batchFunc { return e.UnlockAll })
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback [component...]",
	Short: "Check components out at their recorded locked version",
	Long: `Moves each component's working copy back to the commit recorded as its
locked version and pins it there. Fails per component when no locked version
is recorded or the working copy has uncommitted changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, rollbackAllFlag, "rolled back",
			func(e *engine.BatchEngine) batchFunc { return e.RollbackAll })
	},
}

var (
	unlockAllFlag   bool
	rollbackAllFlag bool
)

func init() {
	lockCmd.Flags().BoolVar(&lockAll, "all", false, "apply to every component")
	unlockCmd.Flags().BoolVar(&unlockAllFlag, "all", false, "apply to every component")
	rollbackCmd.Flags().BoolVar(&rollbackAllFlag, "all", false, "apply to every component")
	rootCmd.AddCommand(lockCmd, unlockCmd, rollbackCmd)
}
