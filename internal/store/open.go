package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gauthierbraillon/postdeck/internal/config"
)

// Open returns the RowStore selected by settings.
func Open(ctx context.Context, s config.Settings, logger *logrus.Logger) (RowStore, error) {
	switch s.Backend {
	case config.BackendPostgres:
		return OpenPostgres(ctx, DefaultPostgresConfig(s.DatabaseURL), logger)
	case config.BackendREST:
		if s.RESTKey == "" {
			return nil, fmt.Errorf("missing backend key: set POSTDECK_REST_KEY or run 'postdeck login'")
		}
		return NewRESTStore(s.RESTURL, s.RESTKey), nil
	case config.BackendSQLite, "":
		return OpenSQLite(s.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown backend %q", s.Backend)
	}
}
