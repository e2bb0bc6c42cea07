package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TheStalwart/phoronix-rss-augmented/bootstrap"
)

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Evict article cache entries older than the article TTL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.NewApp(cmd.Context(), overrides(), false, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.Reap(cmd.Context())
		if err != nil {
			return err
		}
		app.Deps.Logger.InfoContext(cmd.Context(), "reap finished",
			"scanned", result.Scanned,
			"evicted", result.Evicted,
			"failed", result.Failed,
			"temp_removed", result.TempRemoved,
			"freed_bytes", result.FreedBytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reapCmd)
}
