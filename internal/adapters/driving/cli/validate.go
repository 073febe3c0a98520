package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adlumen/amzads/internal/adapters/driven/config"
	"github.com/adlumen/amzads/internal/connectors/amazonads"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and credentials",
	Long: `Load the configuration and perform a token exchange against the
identity endpoint to confirm the credentials work.`,
	RunE: runValidateCmd,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	connector := amazonads.New(cfg, amazonads.NewTokenStore(cfg))
	defer connector.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := connector.Validate(ctx); err != nil {
		return fmt.Errorf("validate connection: %w", err)
	}

	cmd.Printf("Configuration valid for profile %s (%s)\n", cfg.ProfileID, cfg.Region)
	return nil
}
