package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/display"
	"github.com/gauthierbraillon/postdeck/internal/review"
)

const reviewHelp = `Commands:
  list [n]          list the newest n items (default 20)
  show <n|id>       open an item by list number, id or kind/id
  approve, reject   toggle feedback on the open item
  note <text>       save a note ("note" alone clears it)
  edit              start editing the open item's text
  draft <text>      replace the edit draft
  save              save the draft
  cancel            discard the draft
  close             close the open item
  quit              leave
`

// newReviewCmd creates the review subcommand.
func newReviewCmd(deps cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review items interactively",
		Long:  "Open items one at a time to approve, reject, annotate or edit them. Reads commands from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			a, err := openApp(loadCtx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.loadItems(loadCtx)
			if err != nil {
				return err
			}

			shell := newReviewShell(a, items, deps, cmd.OutOrStdout())
			return shell.run(ctx, cmd.InOrStdin())
		},
	}

	return cmd
}

// reviewShell drives a review.Session from line commands.
type reviewShell struct {
	out       io.Writer
	feed      *content.Feed
	session   *review.Session
	formatter *display.TerminalFormatter
	listed    []content.Item
}

func newReviewShell(a *app, items []content.Item, deps cliDeps, out io.Writer) *reviewShell {
	feed := content.NewFeed(a.location)
	feed.AddItems(items)

	sh := &reviewShell{
		out:  out,
		feed: feed,
		formatter: display.NewTerminalFormatter().
			WithClock(deps.now).
			WithLocation(a.location),
	}
	sh.session = review.NewSession(a.repo,
		review.WithLogger(a.logger),
		review.WithClock(deps.now),
		review.WithOnChange(func(item content.Item) { feed.Replace(item) }),
	)
	return sh
}

func (sh *reviewShell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprint(sh.out, reviewHelp)
	sh.list(20)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, sh.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if verb == "quit" || verb == "exit" {
			return nil
		}
		if err := sh.dispatch(ctx, verb, rest); err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *reviewShell) prompt() string {
	st := sh.session.State()
	switch st.Mode {
	case review.ModeEditing:
		return fmt.Sprintf("%s (editing)> ", st.Item.Ref)
	case review.ModeViewing:
		return fmt.Sprintf("%s> ", st.Item.Ref)
	}
	return "> "
}

func (sh *reviewShell) dispatch(ctx context.Context, verb, arg string) error {
	switch verb {
	case "help", "?":
		fmt.Fprint(sh.out, reviewHelp)
	case "list", "ls":
		n := 20
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v <= 0 {
				return fmt.Errorf("list takes a positive count")
			}
			n = v
		}
		sh.list(n)
	case "show", "open", "select":
		item, err := sh.resolve(arg)
		if err != nil {
			return err
		}
		sh.session.Select(item)
		sh.show()
	case "close":
		sh.session.Close()
		fmt.Fprintln(sh.out, "closed")
	case "approve":
		return sh.feedback(ctx, content.FeedbackApproved)
	case "reject":
		return sh.feedback(ctx, content.FeedbackRejected)
	case "note":
		if err := sh.session.SaveNote(ctx, arg); err != nil {
			return err
		}
		if arg == "" {
			fmt.Fprintln(sh.out, "note cleared")
		} else {
			fmt.Fprintln(sh.out, "note saved")
		}
	case "edit":
		if err := sh.session.BeginEdit(); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "draft: %s\n", sh.session.State().Draft)
	case "draft":
		return sh.session.SetDraft(arg)
	case "save":
		st := sh.session.State()
		if st.Mode != review.ModeEditing {
			return review.ErrNotEditing
		}
		if err := sh.session.SaveEdit(ctx, st.Draft); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "text saved")
	case "cancel":
		sh.session.CancelEdit()
		fmt.Fprintln(sh.out, "edit discarded")
	default:
		return fmt.Errorf("unknown command %q (try help)", verb)
	}
	return nil
}

func (sh *reviewShell) feedback(ctx context.Context, value content.Feedback) error {
	err := sh.session.SetFeedback(ctx, value)
	if err != nil && !errors.Is(err, review.ErrNoSelection) && !errors.Is(err, review.ErrSavePending) {
		fmt.Fprintf(sh.out, "feedback shown locally but not saved\n")
		return err
	}
	if err != nil {
		return err
	}
	if fb := sh.session.State().Item.Feedback; fb != content.FeedbackNone {
		fmt.Fprintf(sh.out, "feedback: %s\n", fb)
	} else {
		fmt.Fprintln(sh.out, "feedback cleared")
	}
	return nil
}

func (sh *reviewShell) list(n int) {
	sh.listed = sh.feed.Items(content.FeedOptions{Limit: n})
	if len(sh.listed) == 0 {
		fmt.Fprintln(sh.out, "No items to display.")
		return
	}
	for i, item := range sh.listed {
		mark := ""
		if item.Feedback != content.FeedbackNone {
			mark = " (" + string(item.Feedback) + ")"
		}
		text := sh.formatter.TruncateText(strings.ReplaceAll(item.Text, "\n", " "), 60)
		fmt.Fprintf(sh.out, "%3d. %s %-9s %s %s%s\n", i+1, display.PlatformTag(item.Platform), item.Status, item.Ref, text, mark)
	}
}

func (sh *reviewShell) show() {
	st := sh.session.State()
	fmt.Fprint(sh.out, sh.formatter.FormatItem(st.Item))
}

// resolve accepts a list number from the last listing, kind/id, or a bare id.
func (sh *reviewShell) resolve(arg string) (content.Item, error) {
	if arg == "" {
		return content.Item{}, fmt.Errorf("show needs an item number or id")
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(sh.listed) {
		ref := sh.listed[n-1].Ref
		if item, ok := sh.feed.FindRef(ref); ok {
			return item, nil
		}
	}
	return findItem(sh.feed, arg)
}
