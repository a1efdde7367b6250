package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/enrichr/tmdb"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test [TMDB_BEARER_TOKEN]",
	Short: "Test the TMDB bearer token",
	Long:  `Verify that the TMDB API read access token is accepted and show the lookup settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	token, err := resolveToken(args, cfg.TMDB.Token)
	if err != nil {
		return err
	}

	client, err := newTMDBClient(token)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to TMDB at %s...\n", cfg.TMDB.URL)

	if err := client.TestConnection(context.Background()); err != nil {
		var apiErr *tmdb.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("token rejected by TMDB: %w", err)
		}
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	fmt.Fprintf(out, "- Language: %s\n", cfg.TMDB.Language)
	fmt.Fprintf(out, "- Include adult: %s\n", boolToStatus(cfg.TMDB.IncludeAdult))
	fmt.Fprintf(out, "- Record directory: %s\n", cfg.Store.Dir)

	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
