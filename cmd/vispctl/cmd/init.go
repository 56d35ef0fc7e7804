package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default vispctl.yaml scaffold, with every setting at
// its default value and documented.
const initTemplate = `# vispctl configuration
components_dir: external     # where component working copies live
versions_file: versions.json # fleet version state, relative to this file

git:
  host: github.com
  org: humlab-speech

# Container runtime for npm build steps: podman, docker, or empty for
# auto-detection (podman preferred).
runtime: ""
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter vispctl.yaml configuration",
	Long: `Creates a vispctl.yaml file with every setting at its default value.
The versions file itself is created on the first lock, unlock, or rollback.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Adjust the git host and organization if needed")
		info("  2. Run 'vispctl update' to clone and sync the fleet")
		info("  3. Run 'vispctl status' to check sync state")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
