package app

import (
	"strings"

	"github.com/dropbuddy/dropbuddy/pkg/logger"
)

// ConfigureLogging initialises the global logger from the [logging] section,
// defaulting to info level with pretty output.
func ConfigureLogging(cfg LoggingConfig) error {
	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(cfg.Format)
	if format == "" {
		format = "pretty"
	}
	return logger.Init(level, format)
}
