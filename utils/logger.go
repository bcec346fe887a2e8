// utils/logger.go - Application logger
package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON at info level in production,
// console output at debug level everywhere else.
func NewLogger(production bool) (*zap.Logger, error) {
	if production {
		cfg := zap.NewProductionConfig()
		cfg.DisableStacktrace = true
		return cfg.Build()
	}
	return zap.NewDevelopment()
}
