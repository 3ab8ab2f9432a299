package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/calendar"
	"github.com/gauthierbraillon/postdeck/internal/display"
)

// newCalendarCmd creates the calendar subcommand.
func newCalendarCmd(deps cliDeps) *cobra.Command {
	var view, date, output string
	var shift int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the content calendar",
		Long:  "Show posted and scheduled content as a month grid, a week of columns, or a day split into dayparts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := calendar.ParseGranularity(view)
			if err != nil {
				return err
			}
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

			ref := deps.now().In(a.location)
			if date != "" {
				ref, err = time.ParseInLocation(calendar.DateLayout, date, a.location)
				if err != nil {
					return fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
				}
			}
			ref = calendar.Shift(ref, g, shift)

			items, err := a.loadItems(ctx)
			if err != nil {
				return err
			}

			p := calendar.New(calendar.WithLocation(a.location), calendar.WithClock(deps.now))
			v := p.Partition(items, ref, g)

			formatter := display.NewTerminalFormatter().
				WithClock(deps.now).
				WithLocation(a.location)
			return writeOutput(cmd.OutOrStdout(), output, v, func() string {
				return formatter.FormatView(v)
			})
		},
	}

	cmd.Flags().StringVar(&view, "view", string(calendar.Month), "View to show (month, week, day)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to show, YYYY-MM-DD (default today)")
	cmd.Flags().IntVarP(&shift, "shift", "n", 0, "Move this many views forward (negative for back)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}
