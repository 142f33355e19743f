// Package observability provides the structured logger used across the
// application.
package observability

import (
	"go.uber.org/zap"
)

// NewLogger builds a zap logger for the given environment. "production"
// gets JSON output at info level; anything else gets the development
// console encoder at debug level.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
