package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the process logger. Components receive it through their
// constructors; there is no package-level logger.
func New(mode string) (*zap.Logger, error) {
	switch strings.ToLower(mode) {
	case "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
