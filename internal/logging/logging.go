package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Development mode switches to the console encoder with
// stack traces on warnings.
func New(level string, development bool) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}
