package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/mmcdole/gofeed"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/service"
)

const maxTitleRunes = 60

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [feed-file]",
	Short: "Summarize a generated feed and check it against the cached source",
	Long: `Parse a generated feed (OUTPUT_PATH by default) and list its items. When the
cached source feed is present, the item count and link order are checked
against it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithOverrides(overrides())
		if err != nil {
			return err
		}

		path := cfg.Feed.OutputPath
		if len(args) == 1 {
			path = args[0]
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read feed: %w", err)
		}

		source, err := os.ReadFile(filepath.Join(cfg.Cache.Dir, cache.SourceKey))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read cached source: %w", err)
		}

		report, err := inspectFeed(path, data, source)
		if err != nil {
			return err
		}

		if inspectJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return writeInspectText(cmd.OutOrStdout(), report)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}

// InspectReport describes a generated feed.
type InspectReport struct {
	Path        string        `json:"path"`
	Title       string        `json:"title"`
	FeedType    string        `json:"feed_type"`
	FeedVersion string        `json:"feed_version"`
	SelfLink    string        `json:"self_link,omitempty"`
	Items       []InspectItem `json:"items"`
	// Verified is nil when no cached source was available.
	Verified    *bool  `json:"verified,omitempty"`
	VerifyError string `json:"verify_error,omitempty"`
}

type InspectItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	BodyBytes int    `json:"body_bytes"`
}

// inspectFeed parses data with gofeed. source, when non-empty, is the cached
// upstream feed the output is verified against.
func inspectFeed(path string, data, source []byte) (*InspectReport, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	report := &InspectReport{
		Path:        path,
		Title:       feed.Title,
		FeedType:    feed.FeedType,
		FeedVersion: feed.FeedVersion,
		SelfLink:    feed.FeedLink,
		Items:       make([]InspectItem, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		report.Items = append(report.Items, InspectItem{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
			BodyBytes: len(item.Description),
		})
	}

	if len(source) == 0 {
		return report, nil
	}

	verified := false
	want, err := service.NewFeedAssembler("", nil).Items(source)
	if err == nil {
		err = service.VerifyOutput(data, want)
	}
	if err != nil {
		report.VerifyError = err.Error()
	} else {
		verified = true
	}
	report.Verified = &verified
	return report, nil
}

func writeInspectText(w io.Writer, r *InspectReport) error {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s\n", r.Title)
	fmt.Fprintf(w, "file:      %s\n", r.Path)
	fmt.Fprintf(w, "format:    %s %s\n", r.FeedType, r.FeedVersion)
	if r.SelfLink != "" {
		fmt.Fprintf(w, "self link: %s\n", r.SelfLink)
	}
	fmt.Fprintf(w, "items:     %d\n\n", len(r.Items))

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header([]string{"#", "Title", "Published", "Body", "Link"})

	rows := make([][]string, 0, len(r.Items))
	for i, item := range r.Items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncate(item.Title, maxTitleRunes),
			item.Published,
			strconv.Itoa(item.BodyBytes),
			item.Link,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render items: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render items: %w", err)
	}

	switch {
	case r.Verified == nil:
		color.New(color.Faint).Fprintln(w, "\nno cached source feed, verification skipped")
	case *r.Verified:
		color.New(color.FgGreen).Fprintln(w, "\n✓ item count and order match the cached source")
	default:
		color.New(color.FgRed).Fprintf(w, "\n✗ %s\n", r.VerifyError)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
