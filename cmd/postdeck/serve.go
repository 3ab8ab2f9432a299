package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/server"
)

// newServeCmd creates the serve subcommand.
func newServeCmd(deps cliDeps) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar JSON API",
		Long:  "Serve items, calendar views, stats and review writes over HTTP until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == "" {
				port = a.settings.Port
			}

			srv := server.New(a.repo,
				server.WithLogger(a.logger),
				server.WithLocation(a.location),
				server.WithClock(deps.now),
				server.WithFetchLimit(a.settings.FetchLimit),
				server.WithVersion(resolveVersion(version, buildInfo())),
			)
			return server.Start(ctx, server.DefaultConfig(port), srv.Router(), a.logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default $PORT or 8080)")

	return cmd
}
