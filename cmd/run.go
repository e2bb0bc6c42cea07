package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TheStalwart/phoronix-rss-augmented/bootstrap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform one augmentation run",
	Long: `Fetch the source feed and every linked article (through the disk cache),
assemble the augmented feed, verify it and write it atomically. Stale article
cache entries are evicted afterwards.

The command exits non-zero when the run fails. A run skipped because another
process holds the run lock exits zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.NewApp(cmd.Context(), overrides(), false, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		_, err = app.RunOnce(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
