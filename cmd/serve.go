package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TheStalwart/phoronix-rss-augmented/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run on an interval and serve the feed over HTTP",
	Long: `Run the augmentation every SERVE_INTERVAL and serve:

  GET /feed.xml   the latest generated feed
  GET /health     status of the latest run (503 until a run succeeded)
  GET /metrics    Prometheus metrics (METRICS_PATH)

The secrets file is re-read before every scheduled run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.NewApp(cmd.Context(), overrides(), true, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
