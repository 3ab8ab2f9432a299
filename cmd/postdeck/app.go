package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/postdeck/internal/config"
	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/logging"
	"github.com/gauthierbraillon/postdeck/internal/store"
	"github.com/gauthierbraillon/postdeck/pkg/credentials"
)

// app is the wiring shared by every command that touches the backend.
type app struct {
	settings config.Settings
	logger   *logrus.Logger
	location *time.Location
	rows     store.RowStore
	repo     *content.Repository
}

func newCLILogger(cmd *cobra.Command) *logrus.Logger {
	logger := logging.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return logger
}

// openApp loads configuration and connects to the configured backend.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	logger := newCLILogger(cmd)
	config.LoadEnv(logger)

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	if settings.Backend == config.BackendREST && settings.RESTKey == "" {
		cred, err := credentials.NewStore(settings.ConfigDir).Load(string(config.BackendREST))
		switch {
		case err == nil:
			settings.RESTKey = cred.Key
		case !errors.Is(err, credentials.ErrKeyNotFound):
			return nil, err
		}
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	rows, err := store.Open(ctx, settings, logger)
	if err != nil {
		return nil, err
	}

	repo := content.NewRepository(rows,
		content.WithRepositoryLogger(logger),
		content.WithRepositoryURLTemplate(settings.PostURLTemplate),
		content.WithRepositoryLocation(loc),
	)

	return &app{
		settings: settings,
		logger:   logger,
		location: loc,
		rows:     rows,
		repo:     repo,
	}, nil
}

func (a *app) Close() error {
	return a.rows.Close()
}

// loadItems reads both tables. A backend failure is an error, never an empty
// calendar.
func (a *app) loadItems(ctx context.Context) ([]content.Item, error) {
	items, err := a.repo.Load(ctx, a.settings.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("could not load content: %w", err)
	}
	return items, nil
}

// redactURL hides the password in a database URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
