package cli

import (
	"github.com/spf13/cobra"

	"github.com/adlumen/amzads/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the default config file location.
	configPath string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "amzads",
	Short: "Extract Amazon Ads campaign data and performance reports",
	Long: `amzads pulls campaign structure and performance reports from the
Amazon Ads API and emits them as newline-delimited JSON on stdout.

Credentials come from ~/.amzads/config.toml or AMZADS_* environment
variables.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.amzads/config.toml)")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}
