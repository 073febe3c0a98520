package cli

import (
	"github.com/spf13/cobra"

	"github.com/adlumen/amzads/internal/connectors/amazonads"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List available streams",
	Run:   runStreamsCmd,
}

func init() {
	rootCmd.AddCommand(streamsCmd)
}

func runStreamsCmd(cmd *cobra.Command, _ []string) {
	cmd.Println("Available streams:")
	cmd.Println()
	for _, stream := range amazonads.Streams {
		cmd.Printf("  %s\n", stream.Name)
		cmd.Printf("    Kind: %s\n", stream.Kind)
		if stream.ParentStream != "" {
			cmd.Printf("    Parent: %s\n", stream.ParentStream)
		}
		cmd.Println()
	}
}
