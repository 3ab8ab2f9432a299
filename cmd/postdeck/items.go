package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/display"
)

// newItemsCmd creates the items subcommand.
func newItemsCmd(deps cliDeps) *cobra.Command {
	var platform, status, output string
	var limit int

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List content items, newest first",
		Long:  "List posted and scheduled items in one newest-first list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(output); err != nil {
				return err
			}
			opts := content.FeedOptions{Limit: limit}
			if platform != "" {
				opts.Platforms = []content.Platform{content.Platform(strings.ToLower(platform))}
			}
			if status != "" {
				s, err := content.ParseStatus(strings.ToLower(status))
				if err != nil {
					return err
				}
				opts.Statuses = []content.Status{s}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			loaded, err := a.loadItems(ctx)
			if err != nil {
				return err
			}
			feed := content.NewFeed(a.location)
			feed.AddItems(loaded)
			items := feed.Items(opts)

			formatter := display.NewTerminalFormatter().
				WithClock(deps.now).
				WithLocation(a.location)
			return writeOutput(cmd.OutOrStdout(), output, items, func() string {
				return formatter.FormatFeed(items)
			})
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Filter by platform (x, linkedin, substack)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (posted, scheduled, draft)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of items to display")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

// newStatsCmd creates the stats subcommand.
func newStatsCmd(deps cliDeps) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show content totals",
		Long:  "Show item counts by status, platform and review state, plus posted engagement totals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(output); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.loadItems(ctx)
			if err != nil {
				return err
			}
			stats := content.Summarize(items)

			formatter := display.NewTerminalFormatter().WithClock(deps.now)
			return writeOutput(cmd.OutOrStdout(), output, stats, func() string {
				return formatter.FormatStats(stats)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

// newOpenCmd creates the open subcommand.
func newOpenCmd(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a posted item on its platform",
		Long:  "Open a posted item's public URL in the browser. Accepts a bare id or kind/id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.loadItems(ctx)
			if err != nil {
				return err
			}
			feed := content.NewFeed(a.location)
			feed.AddItems(items)

			item, err := findItem(feed, args[0])
			if err != nil {
				return err
			}
			if item.ExternalURL == "" {
				return fmt.Errorf("item %s has no public URL (only posted items link out)", item.Ref)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", item.ExternalURL)
			if err := deps.opener.Open(item.ExternalURL); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Please visit:\n%s\n", item.ExternalURL)
			}
			return nil
		},
	}

	return cmd
}

// findItem resolves "kind/id" exactly, or a bare id with posted ids first.
func findItem(feed *content.Feed, arg string) (content.Item, error) {
	if kind, id, ok := strings.Cut(arg, "/"); ok {
		k, err := content.ParseKind(kind)
		if err != nil {
			return content.Item{}, err
		}
		if item, found := feed.FindRef(content.Ref{Kind: k, ID: id}); found {
			return item, nil
		}
		return content.Item{}, fmt.Errorf("no item %s", arg)
	}
	if item, found := feed.Find(arg); found {
		return item, nil
	}
	return content.Item{}, fmt.Errorf("no item with id %q", arg)
}
