package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/config"
	"github.com/gauthierbraillon/postdeck/pkg/credentials"
)

// newLoginCmd creates the login subcommand.
func newLoginCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the API key for the rest backend",
		Long:  "Save the managed backend's API key under the config directory so POSTDECK_REST_KEY need not be set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(newCLILogger(cmd))

			if key == "" {
				fmt.Fprint(cmd.OutOrStdout(), "API key: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimSpace(line)
			}

			dir := config.ConfigDir()
			cred := credentials.Credential{
				URL: config.GetEnv("POSTDECK_REST_URL", ""),
				Key: key,
			}
			if err := credentials.NewStore(dir).Save(string(config.BackendREST), cred); err != nil {
				return fmt.Errorf("failed to save key: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Key saved to: %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (prompted when omitted)")

	return cmd
}

// newLogoutCmd creates the logout subcommand.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(newCLILogger(cmd))
			if err := credentials.NewStore(config.ConfigDir()).Delete(string(config.BackendREST)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Key removed")
			return nil
		},
	}
}
