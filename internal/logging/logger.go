package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// CAMPAIGN_LOG_LEVEL controls the log level: trace, debug, info, warn, error (default: info)
func Init() {
	InitLevel(os.Getenv("CAMPAIGN_LOG_LEVEL"))
}

// InitLevel initializes the global logger at the given level. Unknown or empty
// levels fall back to info. Used when the level comes from the config file.
func InitLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
