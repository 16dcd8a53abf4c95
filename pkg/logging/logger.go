// Package logging configures zerolog for the catalog explorer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel validates a level name from flags or configuration.
func ParseLevel(s string) (LogLevel, error) {
	switch level := LogLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelDisabled:
		return level, nil
	case "warning":
		return LevelWarn, nil
	case "":
		return LevelInfo, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn, error or disabled)", s)
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Detail cache hits and first-write-wins skips
//   - Per-item fan-out drops
//   - Superseded or cancelled resolutions
//   - No exact name match (404/400 on lookup)
//
// Info: Normal operation events
//   - Server startup/shutdown
//   - Configuration source in use
//
// Warn: Warning conditions that don't prevent operation
//   - Upstream request errors and timeouts
//   - Retry attempts
//   - Cache errors (treated as a miss)
//   - Failed resolutions published to the user
//
// Error: Error conditions requiring attention
//   - Network failures
//   - Favorites that could not be loaded or saved
//   - Configuration errors
//
// Context Fields:
//   - component: Emitting component (catalog-client, resolver, session, ...)
//   - endpoint: Upstream endpoint label (list, detail, types)
//   - status: HTTP status code
//   - error_class: Error classification (client, server, network, timeout, malformed)
//   - resolution_id: UUID of one Session resolution
//   - branch: Resolver branch (list, filtered)
//   - candidates / dropped: Fan-out sizes
//   - duration: Operation duration
