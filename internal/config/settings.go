package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Backend names a row-store implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendREST     Backend = "rest"
)

// DefaultPostURLTemplate links a posted-metrics id back to the platform.
const DefaultPostURLTemplate = "https://x.com/i/status/%s"

// Settings is the resolved runtime configuration.
type Settings struct {
	Backend         Backend
	DatabaseURL     string
	SQLitePath      string
	RESTURL         string
	RESTKey         string
	Timezone        string
	FetchLimit      int
	PostURLTemplate string
	Port            string
	ConfigDir       string
}

// Load reads Settings from the environment. Call LoadEnv first to pick up
// .env files.
func Load() (Settings, error) {
	dir := ConfigDir()
	s := Settings{
		Backend:         Backend(GetEnv("POSTDECK_BACKEND", string(BackendSQLite))),
		DatabaseURL:     GetEnv("POSTDECK_DATABASE_URL", ""),
		SQLitePath:      GetEnv("POSTDECK_SQLITE_PATH", filepath.Join(dir, "postdeck.db")),
		RESTURL:         GetEnv("POSTDECK_REST_URL", ""),
		RESTKey:         GetEnv("POSTDECK_REST_KEY", ""),
		Timezone:        GetEnv("POSTDECK_TIMEZONE", "Local"),
		FetchLimit:      GetEnvInt("POSTDECK_FETCH_LIMIT", 500),
		PostURLTemplate: GetEnv("POSTDECK_POST_URL_TEMPLATE", DefaultPostURLTemplate),
		Port:            GetEnv("PORT", "8080"),
		ConfigDir:       dir,
	}

	switch s.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if s.DatabaseURL == "" {
			return s, fmt.Errorf("POSTDECK_DATABASE_URL is required for the postgres backend")
		}
	case BackendREST:
		if s.RESTURL == "" {
			return s, fmt.Errorf("POSTDECK_REST_URL is required for the rest backend")
		}
	default:
		return s, fmt.Errorf("unknown backend %q: must be sqlite, postgres or rest", s.Backend)
	}

	if _, err := s.Location(); err != nil {
		return s, err
	}
	return s, nil
}

// Location resolves the calendar timezone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTDECK_TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}
