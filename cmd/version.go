package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// VersionInfo is the build metadata printed by the version command.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	CommitSHA string `json:"commit"`
	BuildDate string `json:"built"`
}

func currentVersion() VersionInfo {
	return VersionInfo{Name: rootCmd.Name(), Version: Version, CommitSHA: CommitSHA, BuildDate: BuildDate}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()
		if mustGetBool(cmd, "json") {
			return outputJSON(info)
		}
		fmt.Printf("%s %s\n", info.Name, info.Version)
		fmt.Printf("  Commit: %s\n", info.CommitSHA)
		fmt.Printf("  Built:  %s\n", info.BuildDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("json", false, "Output as JSON")
}
