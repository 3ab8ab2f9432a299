package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/content"
)

// scheduleLayouts are accepted by --at, tried in order.
var scheduleLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// newPostCmd creates the post subcommand group.
func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create or delete drafts and scheduled posts",
	}

	cmd.AddCommand(newPostCreateCmd())
	cmd.AddCommand(newPostDeleteCmd())

	return cmd
}

func newPostCreateCmd() *cobra.Command {
	var title, body, platform, at string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft, or a scheduled post with --at",
		RunE: func(cmd *cobra.Command, args []string) error {
			if body == "" {
				return fmt.Errorf("missing content: pass --content")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			post := content.NewPost{
				Title:    title,
				Content:  body,
				Platform: content.Platform(platform),
			}
			if at != "" {
				when, err := parseSchedule(at, a.location)
				if err != nil {
					return err
				}
				post.ScheduledFor = &when
			}

			ref, err := a.repo.CreatePost(ctx, post)
			if err != nil {
				return err
			}
			state := content.StatusDraft
			if post.ScheduledFor != nil {
				state = content.StatusScheduled
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s post %s\n", state, ref.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Post title")
	cmd.Flags().StringVarP(&body, "content", "c", "", "Post body")
	cmd.Flags().StringVarP(&platform, "platform", "p", string(content.PlatformX), "Target platform")
	cmd.Flags().StringVar(&at, "at", "", "Schedule time (RFC3339 or \"YYYY-MM-DD HH:MM\" local)")

	return cmd
}

func newPostDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a draft or scheduled post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.DeletePost(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func parseSchedule(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or \"YYYY-MM-DD HH:MM\"", s)
}
