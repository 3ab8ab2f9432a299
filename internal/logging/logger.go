// Package logging wraps logrus with the defaults postdeck uses everywhere.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gauthierbraillon/postdeck/internal/config"
)

// Fields represents structured logging fields.
type Fields = logrus.Fields

// NewLogger creates a JSON logger at the level configured by LOG_LEVEL.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewDiscardLogger returns a logger that drops everything. Tests and pure
// transforms use it when the caller did not supply one.
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
