// Package main provides the postdeck CLI entry point.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/config"
	"github.com/gauthierbraillon/postdeck/pkg/browser"
	"github.com/gauthierbraillon/postdeck/pkg/credentials"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version, then the module version from
// build info (set by go install pkg@version).
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

func buildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// cliDeps are the side effects commands reach for, swappable in tests.
type cliDeps struct {
	opener *browser.Opener
	now    func() time.Time
}

// newRootCmd creates the root command for the postdeck CLI.
func newRootCmd() *cobra.Command {
	return newRootCmdWith(cliDeps{
		opener: browser.NewOpener(nil),
		now:    time.Now,
	})
}

func newRootCmdWith(deps cliDeps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "postdeck",
		Short:        "Review posted and scheduled content on a calendar",
		Long:         "Postdeck merges posted metrics and scheduled posts into one calendar you can browse, annotate and edit.",
		Version:      resolveVersion(version, buildInfo()),
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("postdeck version {{.Version}}\n")

	rootCmd.AddCommand(newCalendarCmd(deps))
	rootCmd.AddCommand(newItemsCmd(deps))
	rootCmd.AddCommand(newStatsCmd(deps))
	rootCmd.AddCommand(newOpenCmd(deps))
	rootCmd.AddCommand(newReviewCmd(deps))
	rootCmd.AddCommand(newPostCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newServeCmd(deps))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long:  "Show the resolved postdeck configuration and where it comes from.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newCLILogger(cmd)
			config.LoadEnv(logger)
			settings, err := config.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config directory: %s\n", settings.ConfigDir)
			fmt.Fprintf(out, "Backend: %s\n", settings.Backend)
			switch settings.Backend {
			case config.BackendSQLite:
				fmt.Fprintf(out, "Database: %s\n", settings.SQLitePath)
			case config.BackendPostgres:
				fmt.Fprintf(out, "Database: %s\n", redactURL(settings.DatabaseURL))
			case config.BackendREST:
				fmt.Fprintf(out, "API: %s\n", settings.RESTURL)
				fmt.Fprintf(out, "API key: %s\n", keyStatus(settings))
			}
			fmt.Fprintf(out, "Timezone: %s\n", settings.Timezone)
			fmt.Fprintf(out, "Fetch limit: %d\n", settings.FetchLimit)
			return nil
		},
	}

	return cmd
}

func keyStatus(s config.Settings) string {
	if s.RESTKey != "" {
		return "from POSTDECK_REST_KEY"
	}
	if _, err := credentials.NewStore(s.ConfigDir).Load(string(config.BackendREST)); err == nil {
		return "saved (postdeck login)"
	}
	return "missing"
}
