// Package cmd contains the CLI commands of the feed augmenter.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/TheStalwart/phoronix-rss-augmented/config"
)

var (
	outputPath string
	cacheDir   string
	feedURL    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phoronix-rss-augmented",
	Short: "Republish the Phoronix RSS feed with full article bodies",
	Long: `phoronix-rss-augmented fetches the Phoronix RSS feed, replaces every item
description with the sanitized body of the linked article and writes an
RSS 2.0 document to disk.

Configuration is read from the environment and an optional dotenv secrets
file. The flags below take precedence over the environment.

Example usage:
  phoronix-rss-augmented run                      # one run, suitable for cron
  phoronix-rss-augmented serve                    # run on an interval and serve /feed.xml
  phoronix-rss-augmented reap                     # evict stale article cache entries
  phoronix-rss-augmented inspect                  # summarize the generated feed`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", "", "output feed path (OUTPUT_PATH)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "cache directory (CACHE_DIR)")
	rootCmd.PersistentFlags().StringVar(&feedURL, "feed-url", "", "source feed URL (FEED_SOURCE_URL)")
}

func overrides() config.Overrides {
	return config.Overrides{
		FeedURL:    feedURL,
		OutputPath: outputPath,
		CacheDir:   cacheDir,
	}
}
