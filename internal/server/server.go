// Package server exposes the calendar, item list and review writes over a
// small JSON API for the dashboard front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gauthierbraillon/postdeck/internal/config"
	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/logging"
)

// Repository is the persistence surface the API needs.
// *content.Repository satisfies it.
type Repository interface {
	Load(ctx context.Context, limit int) ([]content.Item, error)
	UpdateFeedback(ctx context.Context, ref content.Ref, fb content.Feedback) error
	UpdateNote(ctx context.Context, ref content.Ref, note string) error
	UpdateText(ctx context.Context, ref content.Ref, text string) error
	CreatePost(ctx context.Context, p content.NewPost) (content.Ref, error)
	DeletePost(ctx context.Context, id string) error
}

// Config represents HTTP server configuration.
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration on port.
func DefaultConfig(port string) Config {
	return Config{
		Port:            port,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation sets the calendar timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock sets the clock used for the default calendar date and "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFetchLimit caps rows read from each table per request.
func WithFetchLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.fetchLimit = n
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// Server holds the handlers' dependencies.
type Server struct {
	repo       Repository
	logger     *logrus.Logger
	metrics    *Metrics
	location   *time.Location
	now        func() time.Time
	fetchLimit int
	version    string
}

// New creates a Server over repo.
func New(repo Repository, opts ...Option) *Server {
	s := &Server{
		repo:       repo,
		logger:     logging.NewDiscardLogger(),
		location:   time.Local,
		now:        time.Now,
		fetchLimit: 500,
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Router builds the gin engine with common middleware and all routes.
func (s *Server) Router() *gin.Engine {
	if config.GetEnv("GIN_MODE", "release") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(s.logger))
	router.Use(RecoveryMiddleware(s.logger))
	router.Use(s.metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "postdeck",
			"version": s.version,
		})
	})
	router.GET("/metrics", s.metrics.Handler())

	api := router.Group("/api")
	api.GET("/items", s.listItems)
	api.GET("/calendar", s.getCalendar)
	api.GET("/stats", s.getStats)
	api.PATCH("/items/:kind/:id/feedback", s.patchFeedback)
	api.PATCH("/items/:kind/:id/note", s.patchNote)
	api.PATCH("/items/:kind/:id/text", s.patchText)
	api.POST("/posts", s.createPost)
	api.DELETE("/posts/:id", s.deletePost)

	return router
}

// Start serves handler until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, cfg Config, handler http.Handler, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
