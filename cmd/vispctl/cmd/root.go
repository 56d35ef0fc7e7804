package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath   string
	versionsPath string
	verbose      bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "vispctl",
	Short: "Manage the fleet of VISP component repositories",
	Long: `vispctl keeps a fleet of component git repositories synchronized with
their remotes. Components follow the latest remote commit unless locked to a
specific one; locked versions double as rollback targets. The version state
of the whole fleet lives in a single versions file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vispctl %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "vispctl.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&versionsPath, "versions-file", "", "path to versions file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
